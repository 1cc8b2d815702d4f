package message

import (
	"strconv"
	"time"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

// TimestampLayout renders dates the way en-US toLocaleString does.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Normalizer converts raw provider messages into NormalizedMessages.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer renders timestamps in loc; nil means time.Local.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Normalize never fails. Missing or unusable fields fall back to the
// defaults in domain.
func (n *Normalizer) Normalize(raw *domain.RawMessage) domain.NormalizedMessage {
	if raw == nil {
		return domain.NormalizedMessage{Sender: domain.UnknownSender, IsRead: true, Attachments: []domain.Attachment{}}
	}

	payload := raw.Payload
	subject, _ := payload.Header("Subject")
	from, _ := payload.Header("From")

	body, attachments := n.resolveBody(raw.ID, payload)

	return domain.NormalizedMessage{
		ID:          raw.ID,
		ThreadID:    raw.ThreadID,
		Subject:     subject,
		Sender:      ParseSender(from),
		Snippet:     raw.Snippet,
		Body:        body,
		Timestamp:   n.FormatTimestamp(raw.InternalDate),
		IsRead:      !raw.HasLabel(domain.LabelUnread),
		Attachments: attachments,
	}
}

func (n *Normalizer) resolveBody(messageID string, payload *domain.MimePart) (string, []domain.Attachment) {
	if payload.HasParts() {
		res := WalkParts(messageID, payload.Parts)
		switch {
		case res.HasHTML():
			return DecodeBase64URL(res.HTML), res.Attachments
		case res.HasPlain():
			return DecodeBase64URL(res.Plain), res.Attachments
		default:
			return "", res.Attachments
		}
	}

	if data, ok := payload.InlineData(); ok {
		return DecodeBase64URL(data), []domain.Attachment{}
	}
	return "", []domain.Attachment{}
}

// FormatTimestamp turns an epoch-milliseconds string into a display date.
// Unparsable input yields "".
func (n *Normalizer) FormatTimestamp(internalDate string) string {
	ms, err := strconv.ParseInt(internalDate, 10, 64)
	if err != nil {
		return ""
	}
	return time.UnixMilli(ms).In(n.loc).Format(TimestampLayout)
}
