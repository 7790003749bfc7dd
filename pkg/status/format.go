package status

import (
	"fmt"
)

// FileFormatter defines how outcomes and progress should be formatted
type FileFormatter interface {
	// FormatEntry formats a per-file outcome message
	FormatEntry(entry Entry) string

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

// FormatEntry formats a per-file outcome message with emojis
func (f *DefaultFileFormatter) FormatEntry(entry Entry) string {
	switch entry.Outcome {
	case OutcomeTransformed:
		return fmt.Sprintf("📝 Transformed %s", entry.Path)
	case OutcomeAmbiguousSkip:
		return fmt.Sprintf("⚠️  Ambiguous %s", entry.Path)
	case OutcomeStructuralDefect:
		return fmt.Sprintf("🚧 Needs review %s", entry.Path)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", entry.Path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", entry.Path)
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
