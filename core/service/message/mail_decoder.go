// Package message turns raw Gmail payloads into display-ready messages.
package message

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/pkg/logger"
)

var base64URLReplacer = strings.NewReplacer("-", "+", "_", "/")

// DecodeBase64URL decodes a base64url body into UTF-8 text.
// It never fails: malformed input yields domain.UndecodableContent.
func DecodeBase64URL(data string) string {
	if data == "" {
		return ""
	}

	std := base64URLReplacer.Replace(data)
	if pad := len(std) % 4; pad != 0 {
		std += strings.Repeat("=", 4-pad)
	}

	raw, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		logger.WithError(err).WithField("length", len(data)).Warn("base64url decode failed")
		return domain.UndecodableContent
	}
	if !utf8.Valid(raw) {
		logger.WithField("length", len(data)).Warn("decoded body is not valid UTF-8")
		return domain.UndecodableContent
	}

	return string(raw)
}
