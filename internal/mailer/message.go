package mailer

import (
	"errors"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("mailer: no recipients")

// buildMessage converts an Email into a multipart gomail message. When both
// bodies are present the HTML part is the alternative.
func buildMessage(e Email) (*gomail.Message, error) {
	if len(e.AllRecipients()) == 0 {
		return nil, ErrNoRecipients
	}
	if e.From == "" {
		return nil, errors.New("mailer: missing from address")
	}

	m := gomail.NewMessage()
	if e.FromName != "" {
		m.SetAddressHeader("From", e.From, e.FromName)
	} else {
		m.SetHeader("From", e.From)
	}
	if len(e.To) > 0 {
		m.SetHeader("To", e.To...)
	}
	if len(e.Cc) > 0 {
		m.SetHeader("Cc", e.Cc...)
	}
	if len(e.Bcc) > 0 {
		m.SetHeader("Bcc", e.Bcc...)
	}
	if e.ReplyTo != "" {
		m.SetHeader("Reply-To", e.ReplyTo)
	}
	m.SetHeader("Subject", e.Subject)
	for k, v := range e.Headers {
		m.SetHeader(k, v)
	}

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		m.SetBody("text/plain", e.TextBody)
		m.AddAlternative("text/html", e.HTMLBody)
	case e.HTMLBody != "":
		m.SetBody("text/html", e.HTMLBody)
	default:
		m.SetBody("text/plain", e.TextBody)
	}
	return m, nil
}
