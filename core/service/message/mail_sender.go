package message

import (
	"regexp"
	"strings"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

var displayNamePattern = regexp.MustCompile(`^(.*)<.*>$`)

// ParseSender extracts the display name from a From header value.
// A value without an angle-bracketed address is returned unchanged.
func ParseSender(from string) string {
	if from == "" {
		return domain.UnknownSender
	}

	m := displayNamePattern.FindStringSubmatch(from)
	if m == nil {
		return from
	}

	return strings.ReplaceAll(strings.TrimSpace(m[1]), `"`, "")
}
