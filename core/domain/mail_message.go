package domain

import "strings"

// RawMessage is a provider message as delivered by the Gmail REST API.
// Field tags follow the wire format so fixtures decode directly.
type RawMessage struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"threadId"`
	InternalDate string    `json:"internalDate,omitempty"`
	LabelIDs     []string  `json:"labelIds,omitempty"`
	Snippet      string    `json:"snippet,omitempty"`
	Payload      *MimePart `json:"payload,omitempty"`
}

// MimePart is one node of a message's MIME tree.
type MimePart struct {
	PartID   string      `json:"partId,omitempty"`
	MimeType string      `json:"mimeType,omitempty"`
	Filename string      `json:"filename,omitempty"`
	Headers  []Header    `json:"headers,omitempty"`
	Body     *PartBody   `json:"body,omitempty"`
	Parts    []*MimePart `json:"parts,omitempty"`
}

// PartBody holds either inline base64url data or an attachment reference.
type PartBody struct {
	AttachmentID string `json:"attachmentId,omitempty"`
	Data         string `json:"data,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Header returns the first header matching name case-insensitively.
func (p *MimePart) Header(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// InlineData returns the still-encoded inline body, if any.
func (p *MimePart) InlineData() (string, bool) {
	if p == nil || p.Body == nil || p.Body.Data == "" {
		return "", false
	}
	return p.Body.Data, true
}

func (p *MimePart) AttachmentID() (string, bool) {
	if p == nil || p.Body == nil || p.Body.AttachmentID == "" {
		return "", false
	}
	return p.Body.AttachmentID, true
}

func (p *MimePart) BodySize() int64 {
	if p == nil || p.Body == nil {
		return 0
	}
	return p.Body.Size
}

func (p *MimePart) HasParts() bool {
	return p != nil && len(p.Parts) > 0
}

// HasLabel reports whether the message carries label.
func (m *RawMessage) HasLabel(label string) bool {
	for _, l := range m.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}

// Attachment is a metadata reference to an attachment; content is never fetched.
type Attachment struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachmentId"`
	MessageID    string `json:"messageId"`
}

// NormalizedMessage is the display-ready form of a RawMessage.
type NormalizedMessage struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"threadId"`
	Subject     string       `json:"subject"`
	Sender      string       `json:"sender"`
	Snippet     string       `json:"snippet"`
	Body        string       `json:"body"`
	Timestamp   string       `json:"timestamp"`
	IsRead      bool         `json:"isRead"`
	Attachments []Attachment `json:"attachments"`
}

// OutgoingMail is an HTML message to send from the authenticated mailbox.
type OutgoingMail struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SentMessage identifies a message accepted by the provider.
type SentMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}
