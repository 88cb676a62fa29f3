package telegram

import (
	"fmt"

	"github.com/NicoNex/echotron/v3"
	"github.com/labstack/gommon/log"
)

// Bot notifies an operator chat about new registrations. It is optional;
// a nil *Bot disables notifications.
type Bot struct {
	api    echotron.API
	chatID int64
}

// NewBot connects to the Telegram API and verifies the token
func NewBot(token string, chatID int64) (*Bot, error) {
	if len(token) < 30 {
		return nil, fmt.Errorf("invalid telegram bot token")
	}

	api := echotron.NewAPI(token)
	res, err := api.GetMe()
	if err != nil {
		return nil, err
	}
	if !res.Ok {
		return nil, fmt.Errorf("unable to connect to bot: %s", res.Description)
	}
	log.Infof("[Telegram] Authorized as %s", res.Result.Username)

	return &Bot{api: api, chatID: chatID}, nil
}

// NotifySignup sends a short message about a freshly registered user
func (b *Bot) NotifySignup(username, email string) error {
	text := fmt.Sprintf("New registration: %s <%s>", username, email)
	_, err := b.api.SendMessage(text, b.chatID, nil)
	return err
}
