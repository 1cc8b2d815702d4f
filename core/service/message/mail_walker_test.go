package message

import (
	"testing"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

func textPart(mime, data string) *domain.MimePart {
	return &domain.MimePart{MimeType: mime, Body: &domain.PartBody{Data: data, Size: int64(len(data))}}
}

func attachmentPart(name, mime, id string, size int64) *domain.MimePart {
	return &domain.MimePart{
		MimeType: mime,
		Filename: name,
		Body:     &domain.PartBody{AttachmentID: id, Size: size},
	}
}

func TestWalkPartsMultipartWithNestedAttachment(t *testing.T) {
	parts := []*domain.MimePart{
		textPart("text/plain", "cGxhaW4"),
		textPart("text/html", "aHRtbA"),
		{
			MimeType: "multipart/mixed",
			Parts: []*domain.MimePart{
				attachmentPart("report.pdf", "application/pdf", "att-1", 2048),
			},
		},
	}

	res := WalkParts("msg-1", parts)

	if res.Plain != "cGxhaW4" {
		t.Errorf("expected plain candidate, got %q", res.Plain)
	}
	if res.HTML != "aHRtbA" {
		t.Errorf("expected html candidate, got %q", res.HTML)
	}
	if len(res.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(res.Attachments))
	}
	att := res.Attachments[0]
	want := domain.Attachment{Name: "report.pdf", Type: "application/pdf", Size: 2048, AttachmentID: "att-1", MessageID: "msg-1"}
	if att != want {
		t.Errorf("expected %+v, got %+v", want, att)
	}
}

func TestWalkPartsFirstCandidateWins(t *testing.T) {
	parts := []*domain.MimePart{
		{
			MimeType: "multipart/alternative",
			Parts: []*domain.MimePart{
				textPart("text/plain", "Zmlyc3Q"),
				textPart("text/html", "Zmlyc3RIdG1s"),
			},
		},
		textPart("text/plain", "c2Vjb25k"),
		textPart("text/html", "c2Vjb25kSHRtbA"),
	}

	res := WalkParts("m", parts)

	if res.Plain != "Zmlyc3Q" {
		t.Errorf("expected nested first plain to win, got %q", res.Plain)
	}
	if res.HTML != "Zmlyc3RIdG1s" {
		t.Errorf("expected nested first html to win, got %q", res.HTML)
	}
}

func TestWalkPartsAttachmentDoesNotCompeteForBody(t *testing.T) {
	att := attachmentPart("notes.txt", "text/plain", "att-9", 10)
	att.Body.Data = "bm90ZXM"

	res := WalkParts("m", []*domain.MimePart{att, textPart("text/plain", "Ym9keQ")})

	if res.Plain != "Ym9keQ" {
		t.Errorf("expected body from non-attachment part, got %q", res.Plain)
	}
	if len(res.Attachments) != 1 {
		t.Errorf("expected 1 attachment, got %d", len(res.Attachments))
	}
}

func TestWalkPartsRequiresFilenameAndAttachmentID(t *testing.T) {
	parts := []*domain.MimePart{
		{MimeType: "image/png", Filename: "logo.png", Body: &domain.PartBody{Size: 5}},
		{MimeType: "image/png", Body: &domain.PartBody{AttachmentID: "orphan"}},
	}

	res := WalkParts("m", parts)

	if len(res.Attachments) != 0 {
		t.Errorf("expected no attachments, got %+v", res.Attachments)
	}
}

func TestWalkPartsRecursesIntoAttachmentChildren(t *testing.T) {
	forwarded := attachmentPart("fwd.eml", "message/rfc822", "att-2", 300)
	forwarded.Parts = []*domain.MimePart{
		textPart("text/html", "aW5uZXI"),
		attachmentPart("inner.png", "image/png", "att-3", 12),
	}

	res := WalkParts("m", []*domain.MimePart{forwarded})

	if res.HTML != "aW5uZXI" {
		t.Errorf("expected html from attachment children, got %q", res.HTML)
	}
	if len(res.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(res.Attachments))
	}
	if res.Attachments[0].Name != "fwd.eml" || res.Attachments[1].Name != "inner.png" {
		t.Errorf("expected preorder attachment order, got %+v", res.Attachments)
	}
}

func TestWalkPartsToleratesMalformedParts(t *testing.T) {
	parts := []*domain.MimePart{
		nil,
		{MimeType: "text/plain"},
		{MimeType: "text/html", Body: &domain.PartBody{}},
		attachmentPart("a.bin", "application/octet-stream", "att-1", 1),
		attachmentPart("a.bin", "application/octet-stream", "att-1", 1),
	}

	res := WalkParts("m", parts)

	if res.HasPlain() || res.HasHTML() {
		t.Errorf("expected no body candidates, got %+v", res)
	}
	if len(res.Attachments) != 2 {
		t.Errorf("expected duplicates to be kept, got %d", len(res.Attachments))
	}
}

func TestWalkPartsEmpty(t *testing.T) {
	res := WalkParts("m", nil)
	if res.Attachments == nil {
		t.Error("expected empty, non-nil attachment list")
	}
}
