package domain

import "strings"

// Tone is the requested writing style for generated emails.
type Tone string

const (
	ToneFormal       Tone = "Formal"
	ToneFriendly     Tone = "Friendly"
	ToneProfessional Tone = "Professional"
	ToneConcise      Tone = "Concise"
	TonePersuasive   Tone = "Persuasive"
)

var tones = []Tone{ToneFormal, ToneFriendly, ToneProfessional, ToneConcise, TonePersuasive}

// ParseTone matches s case-insensitively against the known tones.
func ParseTone(s string) (Tone, bool) {
	s = strings.TrimSpace(s)
	for _, t := range tones {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// SearchCandidate is the compact form of an email sent to the model for search.
type SearchCandidate struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}
