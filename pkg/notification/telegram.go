package notification

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// BotSender is the part of tgbotapi.BotAPI used to deliver messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram is a notify.Notifier that posts to a fixed set of chats.
type Telegram struct {
	client  BotSender
	chatIDs []int64
}

func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram login")
	}
	bot.Debug = false
	tg := &Telegram{}
	tg.SetClient(bot)
	return tg, nil
}

func (t *Telegram) SetClient(client BotSender) {
	t.client = client
}

func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

func (t *Telegram) Send(ctx context.Context, subject, message string) error {
	text := subject + "\n" + message
	for _, id := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.client.Send(tgbotapi.NewMessage(id, text)); err != nil {
			return errors.Wrapf(err, "send to chat %d", id)
		}
	}
	return nil
}
