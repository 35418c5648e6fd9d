// internal/channel/sms.go
package channel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewaySender posts bulk SMS batches to an HTTP gateway.
type GatewaySender struct {
	BaseURL  string
	APIKey   string
	SenderID string
	client   *http.Client
}

func NewGatewaySender(baseURL, apiKey, senderID string) *GatewaySender {
	return &GatewaySender{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		SenderID: senderID,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type bulkSMSRequest struct {
	SenderID     string         `json:"sender_id"`
	TemplateType string         `json:"template_type"`
	Message      string         `json:"message"`
	Recipients   []SMSRecipient `json:"recipients"`
}

// SendBulk submits one batch. Non-2xx responses and success=false
// results are both reported as errors so callers have a single
// failure path per channel.
func (s *GatewaySender) SendBulk(recipients []SMSRecipient, templateType, message string) (*BulkSMSResult, error) {
	payload, err := json.Marshal(bulkSMSRequest{
		SenderID:     s.SenderID,
		TemplateType: templateType,
		Message:      message,
		Recipients:   recipients,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sms batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/v1/sms/bulk", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var result BulkSMSResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode sms response: %w", err)
	}
	if !result.Success {
		return &result, fmt.Errorf("sms gateway rejected batch: %s", result.Error)
	}

	return &result, nil
}

var _ SMSSender = (*GatewaySender)(nil)
