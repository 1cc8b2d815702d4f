package message

import (
	"github.com/Karan2916/Intellimail-2/core/domain"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// PartsResult is what a walk over a MIME tree collects.
// Plain and HTML are still base64url encoded.
type PartsResult struct {
	Plain       string
	HTML        string
	Attachments []domain.Attachment
}

func (r *PartsResult) HasPlain() bool { return r.Plain != "" }
func (r *PartsResult) HasHTML() bool  { return r.HTML != "" }

// WalkParts traverses parts depth-first in document order.
// The first text/plain and text/html bodies win; every part carrying both a
// filename and an attachment id is recorded as an attachment of messageID.
func WalkParts(messageID string, parts []*domain.MimePart) PartsResult {
	res := PartsResult{Attachments: []domain.Attachment{}}
	walk(messageID, parts, &res)
	return res
}

func walk(messageID string, parts []*domain.MimePart, res *PartsResult) {
	for _, part := range parts {
		if part == nil {
			continue
		}

		if attID, ok := part.AttachmentID(); ok && part.Filename != "" {
			res.Attachments = append(res.Attachments, domain.Attachment{
				Name:         part.Filename,
				Type:         part.MimeType,
				Size:         part.BodySize(),
				AttachmentID: attID,
				MessageID:    messageID,
			})
		} else if data, ok := part.InlineData(); ok {
			switch part.MimeType {
			case mimeTextPlain:
				if !res.HasPlain() {
					res.Plain = data
				}
			case mimeTextHTML:
				if !res.HasHTML() {
					res.HTML = data
				}
			}
		}

		if part.HasParts() {
			walk(messageID, part.Parts, res)
		}
	}
}
