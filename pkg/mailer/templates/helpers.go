package templates

import (
	"net/url"
	"time"

	"github.com/oksasatya/go-registration-flow/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		if dur <= 0 {
			return
		}
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
	}
	if cfg != nil {
		d.AppName = cfg.AppName
		d.CompanyName = cfg.CompanyName
		d.SupportURL = cfg.SupportURL
		d.VerifyURL = cfg.VerifyURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewPassphraseData builds the data for the registration passphrase email.
// The verify link carries the email so the form is prefilled.
func NewPassphraseData(cfg *config.Config, username, email, passphrase string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Passphrase, username, email, opts...)
	d.Passphrase = passphrase
	if d.VerifyURL != "" {
		d.VerifyURL = d.VerifyURL + "?email=" + url.QueryEscape(email)
	}
	if cfg != nil {
		WithExpiresIn(cfg.PendingRegistrationTTL)(&d)
	}
	return ToMap(d)
}
