package emailer

type Emailer interface {
	Send(toName string, to string, subject string, content string) error
}
