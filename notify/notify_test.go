package notify

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevOTP_CodeIsSingleUse(t *testing.T) {
	logger, hook := test.NewNullLogger()
	otp := NewDevOTP(logger)
	ctx := context.Background()

	require.NoError(t, otp.SendCode(ctx, "+919990001111"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	code, _ := entry.Data["code"].(string)
	require.Len(t, code, 6)

	ok, err := otp.CheckCode(ctx, "+919990001111", "not-it")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = otp.CheckCode(ctx, "+919990001111", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = otp.CheckCode(ctx, "+919990001111", code)
	require.NoError(t, err)
	assert.False(t, ok, "a code cannot be reused")
}

func TestDevOTP_UnknownPhone(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ok, err := NewDevOTP(logger).CheckCode(context.Background(), "+10000000000", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogMailer_RecordsResetLink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewLogMailer(logger)

	require.NoError(t, m.SendPasswordReset(context.Background(), "a@x.com", "http://localhost:5173/resetpassword/abc"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "a@x.com", entry.Data["to"])
	assert.Equal(t, "http://localhost:5173/resetpassword/abc", entry.Data["link"])
}

func TestTemplatesEscapeInput(t *testing.T) {
	body, err := welcomeMessage("<script>alert(1)</script>").render()
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "OrderEase")
}

func TestTwilioAddress(t *testing.T) {
	sms := NewTwilioOTP(TwilioConfig{AccountSID: "AC", AuthToken: "x", ServiceSID: "VA"})
	assert.Equal(t, "+15550001111", sms.address("+15550001111"))

	wa := NewTwilioOTP(TwilioConfig{AccountSID: "AC", AuthToken: "x", ServiceSID: "VA", Channel: "whatsapp"})
	assert.Equal(t, "whatsapp:+15550001111", wa.address("+15550001111"))
	assert.Equal(t, "whatsapp:+15550001111", wa.address("whatsapp:+15550001111"))
}
