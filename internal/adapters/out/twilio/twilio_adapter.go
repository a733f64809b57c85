package twilio

import (
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// TwilioAdapter posts confirmation texts to the Twilio Messages API. The
// service treats delivery as fire-and-forget; this adapter only reports
// whether the API accepted the message.
type TwilioAdapter struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	logger     out.LoggerPort
}

// NewTwilioAdapter returns nil when SMS is disabled; callers treat a nil
// notifier as "no notifications".
func NewTwilioAdapter(cfg *config.Config, logger out.LoggerPort) *TwilioAdapter {
	if !cfg.Twilio.Enabled {
		logger.Info("twilio.disabled", out.LogFields{
			"message": "SMS notifications are disabled",
		})
		return nil
	}

	return &TwilioAdapter{
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.Twilio.URL,
		accountSID: cfg.Twilio.AccountSID,
		authToken:  cfg.Twilio.AuthToken,
		fromNumber: cfg.Twilio.FromNumber,
		logger:     logger,
	}
}

func (a *TwilioAdapter) SendSMS(ctx context.Context, toPhoneDigits string, body string) error {
	a.logger.Info("twilio.sms.send", out.LogFields{
		"to": toPhoneDigits,
	})

	form := nurl.Values{}
	form.Add("To", "+1"+toPhoneDigits)
	form.Add("From", a.fromNumber)
	form.Add("Body", body)

	url := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", a.baseURL, a.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.accountSID, a.authToken)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("twilio.sms.send_failed", out.LogFields{
			"to":    toPhoneDigits,
			"error": err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		a.logger.Error("twilio.sms.send_failed", out.LogFields{
			"to":     toPhoneDigits,
			"status": resp.StatusCode,
		})
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	a.logger.Debug("twilio.sms.send_success", out.LogFields{
		"to": toPhoneDigits,
	})

	return nil
}
