package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aki/agentbox/internal/core/logger"
)

const maxArchiveAttempts = 8

// Processor hands pending messages to a Sink and archives them
type Processor struct {
	sink   Sink
	logger logger.Logger
}

// NewProcessor creates a processor delivering into sink
func NewProcessor(sink Sink, log logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		sink:   sink,
		logger: log,
	}
}

// Process delivers msg to the sink, then moves the file into the done
// folder next to it. On any error the file stays where it was and the
// error is logged and returned; the caller decides whether to retry.
func (p *Processor) Process(ctx context.Context, msg Message) error {
	if err := p.process(ctx, msg); err != nil {
		p.logger.Error("failed to process message", "path", msg.Path, "err", err)
		return err
	}
	return nil
}

func (p *Processor) process(ctx context.Context, msg Message) error {
	senderDir := filepath.Dir(msg.Path)
	if msg.Sender == "" {
		msg.Sender = filepath.Base(senderDir)
	}
	if msg.Name == "" {
		msg.Name = filepath.Base(msg.Path)
	}

	content, err := os.ReadFile(msg.Path)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	if err := p.sink.Deliver(ctx, Delivery{Message: msg, Body: string(content)}); err != nil {
		return fmt.Errorf("failed to deliver message: %w", err)
	}

	target, err := Archive(msg.Path)
	if err != nil {
		return err
	}

	p.logger.Info("message archived", "sender", msg.Sender, "name", msg.Name, "path", target)
	return nil
}

// Archive moves a pending message into the done folder of its sender
// subfolder and returns the new path. An existing file in done is never
// replaced; a reused name is archived as <stem>-<unixnano><ext>.
func Archive(path string) (string, error) {
	doneDir := DonePath(filepath.Dir(path))
	if err := EnsureDir(doneDir); err != nil {
		return "", fmt.Errorf("failed to create done directory: %w", err)
	}

	target, err := archiveTarget(doneDir, filepath.Base(path))
	if err != nil {
		return "", err
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive message: %w", err)
	}
	return target, nil
}

func archiveTarget(doneDir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 0; i < maxArchiveAttempts; i++ {
		target := filepath.Join(doneDir, candidate)
		_, err := os.Lstat(target)
		if os.IsNotExist(err) {
			return target, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check archive target: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, time.Now().UnixNano()+int64(i), ext)
	}
	return "", fmt.Errorf("%w: %s", ErrArchiveConflict, filepath.Join(doneDir, name))
}
