// Package twilio sends SMS and group MMS through the Twilio Programmable
// Messaging API. Without an account SID the client runs in mock mode:
// sends are logged and given a fabricated sid, so the rest of the pipeline
// (delivery records, rotation commits) behaves exactly as in production.
package twilio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/config"
)

const defaultBaseURL = "https://api.twilio.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	mock       bool
	log        *logrus.Logger
}

func New(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		fromNumber: cfg.TwilioFromNumber,
		mock:       cfg.MockMode(),
		log:        log,
	}
}

// Send delivers body to the given numbers. Several numbers in one call
// become a comma-joined To parameter, which Twilio fans out as a group
// MMS thread.
func (c *Client) Send(ctx context.Context, to []string, body string) (string, error) {
	if len(to) == 0 {
		return "", fmt.Errorf("no recipients")
	}

	if c.mock {
		sid := mockSID()
		c.log.WithFields(logrus.Fields{
			"to":  strings.Join(to, ","),
			"sid": sid,
		}).Infof("[MOCK MODE] Would send: %s", body)
		return sid, nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("From", c.fromNumber)
	form.Set("To", strings.Join(to, ","))
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call twilio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var result struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}

	return result.SID, nil
}

// mockSID fabricates an id in Twilio's MM-prefixed format.
func mockSID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "MM00000000000000000000000000000000"
	}
	return "MM" + hex.EncodeToString(buf)
}
