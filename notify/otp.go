package notify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	// Channel is "sms" or "whatsapp"
	Channel string
}

// TwilioOTP sends and checks codes through Twilio Verify
type TwilioOTP struct {
	client     *twilio.RestClient
	serviceSID string
	channel    string
}

func NewTwilioOTP(cfg TwilioConfig) *TwilioOTP {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	channel := cfg.Channel
	if channel == "" {
		channel = "sms"
	}
	return &TwilioOTP{client: client, serviceSID: cfg.ServiceSID, channel: channel}
}

func (t *TwilioOTP) SendCode(ctx context.Context, phone string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &verify.CreateVerificationParams{}
	params.SetTo(t.address(phone))
	params.SetChannel(t.channel)

	if _, err := t.client.VerifyV2.CreateVerification(t.serviceSID, params); err != nil {
		return fmt.Errorf("send verification: %w", err)
	}
	return nil
}

func (t *TwilioOTP) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(t.address(phone))
	params.SetCode(code)

	resp, err := t.client.VerifyV2.CreateVerificationCheck(t.serviceSID, params)
	if err != nil {
		return false, fmt.Errorf("check verification: %w", err)
	}
	return resp.Status != nil && *resp.Status == "approved", nil
}

// address prefixes the number for the WhatsApp channel
func (t *TwilioOTP) address(phone string) string {
	if t.channel == "whatsapp" && !strings.HasPrefix(phone, "whatsapp:") {
		return "whatsapp:" + phone
	}
	return phone
}

// DevOTP issues codes locally and logs them. A code is single use.
type DevOTP struct {
	log   logrus.FieldLogger
	mu    sync.Mutex
	codes map[string]string
}

func NewDevOTP(log logrus.FieldLogger) *DevOTP {
	return &DevOTP{log: log, codes: make(map[string]string)}
}

func (d *DevOTP) SendCode(_ context.Context, phone string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	d.mu.Lock()
	d.codes[phone] = code
	d.mu.Unlock()

	d.log.WithFields(logrus.Fields{"phone": phone, "code": code}).Info("verification code issued (dev)")
	return nil
}

func (d *DevOTP) CheckCode(_ context.Context, phone, code string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	want, ok := d.codes[phone]
	if !ok || want != code {
		return false, nil
	}
	delete(d.codes, phone)
	return true, nil
}
