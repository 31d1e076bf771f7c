package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/welcome.html
var templatesFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templatesFS, "templates/welcome.html"))

func NewEmailSender(host string, port int, user, password, from, institutionName, portalURL string) *EmailSender {
	return &EmailSender{
		From:            from,
		InstitutionName: institutionName,
		PortalURL:       portalURL,
		Dialer:          gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendWelcome(to, name string) error {
	if to == "" {
		return errors.New("destinatário vazio")
	}
	if name == "" {
		name = "aluno(a)"
	}

	data := WelcomeEmailData{
		Name:            name,
		InstitutionName: s.InstitutionName,
		PortalURL:       s.PortalURL,
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Bem-vindo(a) à %s, %s!", s.InstitutionName, name))
	m.SetBody("text/html", body.String())

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
