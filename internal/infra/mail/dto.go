package mail

import "gopkg.in/gomail.v2"

type WelcomeEmailData struct {
	Name            string
	InstitutionName string
	PortalURL       string
}

// MessageSender é satisfeito por *gomail.Dialer.
type MessageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From            string
	InstitutionName string
	PortalURL       string
	Dialer          MessageSender
}
