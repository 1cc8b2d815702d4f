package message

import (
	"testing"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

func TestParseSender(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		expected string
	}{
		{"quoted display name", `"Jane Doe" <jane@example.com>`, "Jane Doe"},
		{"bare display name", "Jane Doe <jane@example.com>", "Jane Doe"},
		{"bare address", "jane@example.com", "jane@example.com"},
		{"empty", "", domain.UnknownSender},
		{"comma in quoted name", `"Doe, Jane" <jane@example.com>`, "Doe, Jane"},
		{"surrounding whitespace", `   "Ops Team"   <ops@example.com>`, "Ops Team"},
		{"address only in brackets", "<jane@example.com>", ""},
		{"trailing text after bracket", "Jane <jane@example.com> (work)", "Jane <jane@example.com> (work)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseSender(tt.from)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
