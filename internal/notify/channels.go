package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"frameguru/internal/util"
)

// SendResult is the outcome of one provider call.
type SendResult struct {
	Success bool
	ID      string
	Error   string
}

// EmailSender sends one email. Implementations must be safe for concurrent
// use and bound their own transport timeouts.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) SendResult
}

// SMSSender sends one text message.
type SMSSender interface {
	Send(ctx context.Context, to, text string) SendResult
}

// HTTPEmailSender posts messages to an email provider's JSON API.
type HTTPEmailSender struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewHTTPEmailSender creates an email sender with a bounded request timeout.
func NewHTTPEmailSender(apiURL, apiKey, from string, timeout time.Duration) *HTTPEmailSender {
	return &HTTPEmailSender{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type emailRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

type providerResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func (s *HTTPEmailSender) Send(ctx context.Context, to, subject, htmlBody string) SendResult {
	start := time.Now()
	defer func() {
		util.ChannelSendLatency.WithLabelValues("email").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(emailRequest{From: s.from, To: to, Subject: subject, HTMLBody: htmlBody})
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	resp, err := s.post(ctx, s.apiURL, body)
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	return resp
}

func (s *HTTPEmailSender) post(ctx context.Context, url string, body []byte) (SendResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{}, err
	}
	defer resp.Body.Close()

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SendResult{}, fmt.Errorf("decoding provider response: %w", err)
	}

	if resp.StatusCode >= 300 {
		detail := parsed.Error
		if detail == "" {
			detail = fmt.Sprintf("provider returned %d", resp.StatusCode)
		}
		return SendResult{Error: detail}, nil
	}
	return SendResult{Success: true, ID: parsed.MessageID}, nil
}

// HTTPSMSSender posts messages to an SMS gateway's JSON API.
type HTTPSMSSender struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewHTTPSMSSender creates an SMS sender with a bounded request timeout.
func NewHTTPSMSSender(apiURL, apiKey, from string, timeout time.Duration) *HTTPSMSSender {
	return &HTTPSMSSender{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func (s *HTTPSMSSender) Send(ctx context.Context, to, text string) SendResult {
	start := time.Now()
	defer func() {
		util.ChannelSendLatency.WithLabelValues("sms").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(smsRequest{From: s.from, To: to, Body: text})
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SendResult{Error: fmt.Sprintf("decoding provider response: %v", err)}
	}

	if resp.StatusCode >= 300 {
		detail := parsed.Error
		if detail == "" {
			detail = fmt.Sprintf("provider returned %d", resp.StatusCode)
		}
		return SendResult{Error: detail}
	}
	return SendResult{Success: true, ID: parsed.MessageID}
}
