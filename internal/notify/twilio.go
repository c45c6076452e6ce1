package notify

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioConfig holds Twilio SMS configuration.
type TwilioConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
	BaseURL    string `mapstructure:"-"`
}

// TwilioSender sends SMS messages through the Twilio REST API.
type TwilioSender struct {
	cfg     TwilioConfig
	baseURL string
	client  *http.Client
}

// NewTwilioSender creates a new TwilioSender.
func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &TwilioSender{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one SMS with the given body.
func (t *TwilioSender) Send(body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", t.cfg.To)
	form.Set("From", t.cfg.From)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating twilio request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
