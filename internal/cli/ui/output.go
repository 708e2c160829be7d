package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aki/agentbox/internal/core/mailbox"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects UI output; nil leaves a stream unchanged
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// OutputLine prints a formatted line without styling
func OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

// Raw prints s as is
func Raw(s string) {
	fmt.Fprint(stdout, s)
}

// PeerRow is one line of the peer listing
type PeerRow struct {
	ID        string `json:"id"`
	Footprint bool   `json:"footprint"`
	Pending   int    `json:"pending"`
}

// PrintMessageList displays pending messages using a table
func PrintMessageList(messages []mailbox.Message) {
	if len(messages) == 0 {
		Info("No pending messages")
		return
	}

	tbl := NewTable("SENDER", "NAME", "SIZE", "AGE")
	for _, m := range messages {
		size := "-"
		if info, err := os.Stat(m.Path); err == nil {
			size = FormatSize(info.Size())
		}
		tbl.AddRow(m.Sender, m.Name, size, FormatDuration(time.Since(m.ArrivedAt)))
	}

	PrintSectionHeader(MailboxIcon, "Pending messages", len(messages))
	tbl.Print()
	OutputLine("")
}

// PrintPeerList displays peers using a table
func PrintPeerList(peers []PeerRow) {
	if len(peers) == 0 {
		Info("No peers found")
		return
	}

	tbl := NewTable("PEER", "FOOTPRINT", "PENDING")
	for _, p := range peers {
		footprint := DimStyle.Render("no")
		if p.Footprint {
			footprint = SuccessStyle.Render("yes")
		}
		tbl.AddRow(p.ID, footprint, p.Pending)
	}

	PrintSectionHeader(PeerIcon, "Peers", len(peers))
	tbl.Print()
	OutputLine("")
}

// FormatSize formats a byte count using binary units
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMG"[exp])
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "< 1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatTime formats a time for display
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
