package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// commandFunc выполняет команду от имени пользователя и возвращает текст ответа
type commandFunc func(ctx context.Context, user *model.User, args []string) string

// userCommand оборачивает команду, доступную любому зарегистрированному пользователю
func (h *Handlers) userCommand(fn commandFunc) bot.HandlerFunc {
	return h.command(h.requireUser, fn)
}

// facultyCommand оборачивает команду, доступную только преподавателям
func (h *Handlers) facultyCommand(fn commandFunc) bot.HandlerFunc {
	return h.command(h.requireFaculty, fn)
}

// adminCommand оборачивает команду, доступную только администраторам
func (h *Handlers) adminCommand(fn commandFunc) bot.HandlerFunc {
	return h.command(h.requireAdmin, fn)
}

func (h *Handlers) command(
	require func(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool),
	fn commandFunc,
) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		user, ok := require(ctx, b, update)
		if !ok {
			return
		}
		h.sendMessage(ctx, b, update.Message.Chat.ID, fn(ctx, user, commandArgs(update.Message.Text)))
	}
}

// requireUser проверяет что пользователь существует
// Возвращает user и true если OK, nil и false если нет
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.services.Users.GetByTelegramID(ctx, telegramID)

	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// requireFaculty проверяет что пользователь является преподавателем
func (h *Handlers) requireFaculty(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !user.IsFaculty() {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только преподавателям.\n\nСтать преподавателем: /becomefaculty")
		return nil, false
	}

	return user, true
}

func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !user.IsAdmin() {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только администраторам.")
		return nil, false
	}

	return user, true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
