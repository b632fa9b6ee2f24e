package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"droughtwatch/internal/types"
)

// sendGridAPIBase is the default SendGrid API base URL. Overridable in tests
// via SendGridClientConfig.BaseURL.
const sendGridAPIBase = "https://api.sendgrid.com"

func newEmailError(msg string, err error) error {
	return types.NewAppError(types.ErrCodeUpstreamEmail, msg, err)
}

// SendGridClientConfig holds the configuration for creating a SendGridClient.
type SendGridClientConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string // Override for testing; defaults to sendGridAPIBase
	Logger    *slog.Logger
}

// SendGridClient implements EmailProvider by calling the SendGrid v3 Mail
// Send API through BaseClient, so alert delivery inherits circuit breaking
// and retry behavior and can be tested with httptest.
type SendGridClient struct {
	base      *BaseClient
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
	logger    *slog.Logger
}

// NewSendGridClient creates a new SendGridClient.
func NewSendGridClient(httpClient *http.Client, cfg SendGridClientConfig) *SendGridClient {
	base := NewBaseClient(
		httpClient,
		"sendgrid",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"DroughtWatch/1.0",
	)
	return newSendGridClient(base, cfg)
}

// NewSendGridClientWithBase creates a SendGridClient with a pre-configured
// BaseClient. Useful in tests to disable retries.
func NewSendGridClientWithBase(base *BaseClient, cfg SendGridClientConfig) *SendGridClient {
	return newSendGridClient(base, cfg)
}

func newSendGridClient(base *BaseClient, cfg SendGridClientConfig) *SendGridClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sendGridAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SendGridClient{
		base:      base,
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// Send transmits one alert email and returns the provider message ID from
// the X-Message-Id response header. 429 and 5xx responses are retried by
// BaseClient; remaining failures map to upstream email errors.
func (s *SendGridClient) Send(ctx context.Context, input SendInput) (string, error) {
	payload := s.buildMailPayload(input)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", newEmailError("failed to marshal mail payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return "", newEmailError("failed to create mail send request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// SendGrid returns 202 Accepted on success.
	if resp.StatusCode == http.StatusAccepted {
		return resp.Header.Get("X-Message-Id"), nil
	}

	return "", s.handleErrorResponse(resp)
}

type sendGridMailPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (s *SendGridClient) buildMailPayload(input SendInput) sendGridMailPayload {
	// text/plain must precede text/html per the v3 API contract.
	var content []sendGridContent
	if input.BodyText != "" {
		content = append(content, sendGridContent{Type: "text/plain", Value: input.BodyText})
	}
	if input.BodyHTML != "" {
		content = append(content, sendGridContent{Type: "text/html", Value: input.BodyHTML})
	}

	return sendGridMailPayload{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: input.To, Name: input.ToName}}},
		},
		From:    sendGridAddress{Email: s.fromEmail, Name: s.fromName},
		Subject: input.Subject,
		Content: content,
	}
}

type sendGridErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

func (s *SendGridClient) handleErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return newEmailError(
			fmt.Sprintf("provider returned status %d with unreadable body", resp.StatusCode),
			readErr,
		)
	}

	errMsg := string(body)
	var sgErr sendGridErrorResponse
	if jsonErr := json.Unmarshal(body, &sgErr); jsonErr == nil && len(sgErr.Errors) > 0 {
		errMsg = sgErr.Errors[0].Message
	}

	return newEmailError(
		fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, errMsg),
		nil,
	)
}
