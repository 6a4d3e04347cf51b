package status

import (
	"fmt"
)

// FileFormatter defines how file outcomes and progress should be formatted
type FileFormatter interface {
	// FormatFileOperation formats a file outcome message
	FormatFileOperation(path string, outcome Outcome) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file outcome message with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path string, outcome Outcome) string {
	switch outcome {
	case OutcomeChanged:
		return fmt.Sprintf("📝 Rewrote %s", path)
	case OutcomeSkipped:
		return fmt.Sprintf("🚫 Skipped %s", path)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", path)
	case OutcomeNoContext:
		return fmt.Sprintf("🧭 No path context for %s", path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
