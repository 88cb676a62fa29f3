package emailer

import (
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridApiMail struct {
	apiKey   string
	fromName string
	from     string
}

func NewSendgridApiMail(apiKey, fromName, from string) *SendgridApiMail {
	ans := SendgridApiMail{apiKey: apiKey, fromName: fromName, from: from}
	return &ans
}

func (o *SendgridApiMail) Send(toName string, to string, subject string, content string) error {
	m := mail.NewV3Mail()

	mailFrom := mail.NewEmail(o.fromName, o.from)
	mailContent := mail.NewContent("text/html", content)
	mailTo := mail.NewEmail(toName, to)

	m.SetFrom(mailFrom)
	m.AddContent(mailContent)

	personalization := mail.NewPersonalization()
	personalization.AddTos(mailTo)
	personalization.Subject = subject

	m.AddPersonalizations(personalization)

	request := sendgrid.GetRequest(o.apiKey, "/v3/mail/send", "https://api.sendgrid.com")
	request.Method = "POST"
	request.Body = mail.GetRequestBody(m)
	_, err := sendgrid.API(request)
	return err
}
