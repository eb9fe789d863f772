package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/duedate/reminder/internal/config"
)

// ErrUnknownProvider is returned by New for an unsupported provider name
var ErrUnknownProvider = errors.New("unknown email provider")

// New builds the Sender selected by cfg.Provider
func New(ctx context.Context, cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "resend", "":
		return asSender(NewResendSender(ResendConfig{
			APIKey:      cfg.APIKey,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
			BaseURL:     cfg.BaseURL,
		}))
	case "sendgrid":
		return asSender(NewSendGridSender(cfg.APIKey, cfg.FromAddress, cfg.FromName))
	case "ses":
		return asSender(NewSESSender(ctx, SESConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			FromAddress:     cfg.FromAddress,
			FromName:        cfg.FromName,
		}))
	case "gmail":
		return asSender(NewGmailSender(ctx, GmailConfig{
			CredentialsJSON: cfg.Gmail.CredentialsJSON,
			ClientID:        cfg.Gmail.ClientID,
			ClientSecret:    cfg.Gmail.ClientSecret,
			RefreshToken:    cfg.Gmail.RefreshToken,
			SenderAddress:   cfg.FromAddress,
			SenderName:      cfg.FromName,
		}))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// asSender keeps a typed nil sender from escaping as a non-nil interface
func asSender[S Sender](s S, err error) (Sender, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
