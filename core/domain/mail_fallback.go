package domain

// Named defaults substituted when a message field is missing or unusable.
// Normalization never fails; it degrades to these values instead.
const (
	UnknownSender      = "Unknown Sender"
	UndecodableContent = "Error: Could not decode email content."
)

// Gmail system labels.
const (
	LabelUnread = "UNREAD"
	LabelInbox  = "INBOX"
)
