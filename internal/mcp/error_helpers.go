package mcp

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestions represents an error with tool suggestions
type ErrorWithSuggestions struct {
	Message     string
	Suggestions []string
}

// Error returns the error message with suggestions
func (e *ErrorWithSuggestions) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\n\nDid you mean to use one of these tools instead?\n")
	for _, suggestion := range e.Suggestions {
		sb.WriteString("  - ")
		sb.WriteString(suggestion)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewErrorWithSuggestions creates a new error with tool suggestions
func NewErrorWithSuggestions(message string, suggestions ...string) error {
	return &ErrorWithSuggestions{
		Message:     message,
		Suggestions: suggestions,
	}
}

// UnknownAgentError is returned when a message is addressed to an agent
// without a mailbox
func UnknownAgentError(agentID string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("unknown agent: %s", agentID),
		"mailbox_peers - List agents that have a mailbox",
	)
}

// MessageNotFoundError is returned when a path is not a pending message
func MessageNotFoundError(path string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("message not found: %s", path),
		"mailbox_pending - List pending messages with their paths",
	)
}

// InvalidParameterError returns an error with suggestions for invalid parameters
func InvalidParameterError(param string, expected string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("invalid %s: expected %s", param, expected),
		"Use the tool descriptions to understand parameter requirements",
	)
}
