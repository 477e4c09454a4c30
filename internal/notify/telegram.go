// Package notify pushes critical risk alerts to the ops Telegram chat.
package notify

import (
	"context"
	"fmt"

	domainRisk "agrolend-backend/internal/domain/risk"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyCritical(_ context.Context, a *domainRisk.Alert) error {
	text := fmt.Sprintf("🚨 %s [%s]\nloan: %s\n%s", a.Type, a.Severity, a.LoanID, a.Message)
	msg := tgbotapi.NewMessage(n.chatID, text)
	_, err := n.bot.Send(msg)
	return err
}
