// Package templates provides files written into agent working directories.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// GuideFile is the name of the mailbox guide inside an agent directory
const GuideFile = "AGENTBOX.md"

//go:embed mailbox.md
var MailboxTemplate string

// TemplateData represents data for template rendering
type TemplateData struct {
	AgentID    string
	MessageDir string
	// Peers lists the other agents of the session
	Peers []string
}

// WriteMailboxGuide writes the mailbox guide into dir. An existing guide is
// left alone; the returned bool reports whether a file was written.
func WriteMailboxGuide(dir string, data TemplateData) (bool, error) {
	path := filepath.Join(dir, GuideFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if err := writeTemplate(path, MailboxTemplate, data); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", GuideFile, err)
	}
	return true, nil
}

func writeTemplate(path, templateContent string, data TemplateData) (err error) {
	tmpl, err := template.New(filepath.Base(path)).Parse(templateContent)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return tmpl.Execute(file, data)
}
