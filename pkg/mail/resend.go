// Package mail sends transactional email through Resend.
package mail

import (
	"context"
	"fmt"

	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/resend/resend-go/v3"
)

// Sender abstracts outbound email so services never hold the Resend client directly.
type Sender interface {
	// SendOTPCode delivers a sign-in code to the recipient. The code is
	// plaintext in the email; only a hash is stored server side.
	SendOTPCode(ctx context.Context, toEmail, code string) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
}

// NewResendSender builds a Sender backed by the Resend API.
func NewResendSender(cfg config.ResendConfig) (Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	return &resendSender{
		client:    resend.NewClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
	}, nil
}

func (s *resendSender) SendOTPCode(ctx context.Context, toEmail, code string) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f4f5;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#18181b;font-size:24px;margin:0 0 8px 0;">PressRoute</h1>
              <h2 style="color:#18181b;font-size:18px;margin:0 0 24px 0;">Your sign-in code</h2>
              <p style="color:#52525b;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                Enter this code to sign in. It expires in 10 minutes.
              </p>
              <p style="color:#18181b;font-size:32px;font-weight:700;letter-spacing:8px;margin:0 0 24px 0;">%s</p>
              <p style="color:#a1a1aa;font-size:13px;line-height:1.6;margin:0;">
                If you didn't request this code, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, code)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("PressRoute <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Your PressRoute sign-in code",
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("sending otp email: %w", err)
	}
	return nil
}
