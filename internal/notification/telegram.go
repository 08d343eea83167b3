package notification

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// TelegramNotifier отправляет уведомления в личный чат пользователя
type TelegramNotifier struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewTelegramNotifier(b *bot.Bot, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: b, logger: logger}
}

func (n *TelegramNotifier) Notify(ctx context.Context, user *model.User, message string) error {
	// В Telegram личный чат пользователя совпадает с его ID
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: user.TelegramID,
		Text:   message,
	})
	if err != nil {
		return fmt.Errorf("send telegram message to %d: %w", user.TelegramID, err)
	}
	return nil
}

// LogNotifier пишет уведомления в лог; используется, когда токен бота не задан
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, user *model.User, message string) error {
	n.logger.Info("Notification",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("message", message),
	)
	return nil
}
