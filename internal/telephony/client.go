package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crm_backend/platform/apperr"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
)

// Client talks to the provider's REST API. A nil Client is valid and means
// the integration is not configured.
type Client struct {
	baseURL  string
	apiKey   string
	callerID string
	http     *http.Client
	log      *logger.Logger
}

type placeCallRequest struct {
	To       string `json:"to"`
	CallerID string `json:"callerId,omitempty"`
}

type placeCallResponse struct {
	CallID string `json:"callId"`
	URL    string `json:"url"`
}

// DispatchedCall is the provider's answer to a click-to-call request.
type DispatchedCall struct {
	// ProviderRef is the provider's own id for the dispatch request. The
	// completed-call webhook does NOT echo it back, which is why the calls
	// module reconciles by phone number and time window instead.
	ProviderRef string
	// URL is the browser softphone URL for the agent.
	URL string
}

// NewClient creates a provider client, or nil when no credentials are configured.
func NewClient(cfg config.TelephonyConfig, log *logger.Logger) *Client {
	if !cfg.IsTelephonyEnabled() {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetTelephonyBaseURL(), "/"),
		apiKey:   cfg.GetTelephonyAPIKey(),
		callerID: cfg.GetTelephonyCallerID(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// PlaceCall asks the provider to start an outbound call to the given number.
func (c *Client) PlaceCall(ctx context.Context, phoneNumber string) (DispatchedCall, error) {
	if c == nil {
		return DispatchedCall{}, apperr.Unavailable("telephony provider is not configured")
	}

	payload := placeCallRequest{
		To:       phone.NormalizeE164(phoneNumber),
		CallerID: c.callerID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DispatchedCall{}, fmt.Errorf("marshal place-call payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/calls", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return DispatchedCall{}, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return DispatchedCall{}, fmt.Errorf("place-call request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("provider rejected place-call request",
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return DispatchedCall{}, apperr.Unavailable("telephony provider rejected the call")
	}

	var parsed placeCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return DispatchedCall{}, fmt.Errorf("decode place-call response: %w", err)
	}

	return DispatchedCall{ProviderRef: parsed.CallID, URL: parsed.URL}, nil
}

// FetchRecording downloads recording media from the provider-hosted URL.
// The caller owns closing the returned reader.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) (io.ReadCloser, string, error) {
	if c == nil {
		return nil, "", apperr.Unavailable("telephony provider is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch recording: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch recording: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return resp.Body, contentType, nil
}
