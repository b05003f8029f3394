package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/recouphq/voicebridge/internal/telephony"
)

const defaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioInitiator places outbound calls through the Twilio REST API.
type TwilioInitiator struct {
	accountSID string
	authToken  string
	fromNumber string
	apiBaseURL string
	client     *http.Client
}

func NewTwilioInitiator(accountSID, authToken, fromNumber string) *TwilioInitiator {
	return &TwilioInitiator{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		apiBaseURL: defaultAPIBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type createCallResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (t *TwilioInitiator) InitiateCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	form := url.Values{}
	form.Set("To", req.ToPhone)
	form.Set("From", t.fromNumber)
	form.Set("Url", req.VoiceWebhookURL)
	if req.StatusCallbackURL != "" {
		form.Set("StatusCallback", req.StatusCallbackURL)
		form.Set("StatusCallbackMethod", "POST")
	}
	if req.Record {
		form.Set("Record", "true")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", t.apiBaseURL, t.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(t.accountSID, t.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create call request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed createCallResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse create call response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = string(body)
		}
		return "", fmt.Errorf("create call returned status %d: %s", resp.StatusCode, msg)
	}
	if parsed.SID == "" {
		return "", fmt.Errorf("create call response missing sid")
	}
	return parsed.SID, nil
}
