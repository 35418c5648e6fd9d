// internal/channel/channel.go
package channel

// EmailSender delivers one rendered email. Implementations are opaque
// to the orchestrator; any returned error is recorded as an email
// delivery failure for that recipient only.
type EmailSender interface {
	Send(to, subject, htmlBody string) (messageID string, err error)
}

// SMSRecipient is one entry in a bulk SMS request.
type SMSRecipient struct {
	PhoneNumber string            `json:"phone_number"`
	Name        string            `json:"name"`
	CustomData  map[string]string `json:"custom_data,omitempty"`
}

// BulkSMSResult is the gateway's per-batch response.
type BulkSMSResult struct {
	Success    bool              `json:"success"`
	BatchID    string            `json:"batch_id,omitempty"`
	MessageIDs map[string]string `json:"message_ids,omitempty"` // phone number -> provider message id
	Error      string            `json:"error,omitempty"`
}

// SMSSender delivers a batch of rendered SMS messages. A success=false
// result or a returned error both count as SMS delivery failure.
type SMSSender interface {
	SendBulk(recipients []SMSRecipient, templateType, message string) (*BulkSMSResult, error)
}
