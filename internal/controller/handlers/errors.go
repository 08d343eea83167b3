package handlers

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// errorMessage переводит ошибку сервиса в понятное пользователю сообщение
func errorMessage(err error, loc *time.Location) string {
	var conflict *model.ConflictError
	switch {
	case errors.As(err, &conflict):
		return fmt.Sprintf("⛔ Время занято: %s #%d, %s",
			formatting.GetEntityName(conflict.Entity.Type),
			conflict.Entity.ID,
			formatting.FormatInterval(conflict.Interval, loc),
		)
	case errors.Is(err, model.ErrInvalidInterval):
		return "❌ Некорректное время или длительность. Проверьте дату, время и продолжительность."
	case errors.Is(err, model.ErrInvalidTransition):
		return "⚠️ Это действие недоступно в текущем статусе. Возможно, запись уже изменили."
	case errors.Is(err, model.ErrNotFound):
		return "❌ Запись не найдена."
	case errors.Is(err, model.ErrForbidden):
		return "🚫 У вас нет прав на это действие."
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}

// fail логирует неожиданные ошибки и возвращает текст для пользователя
func (h *Handlers) fail(action string, err error) string {
	if isUnexpected(err) {
		h.logger.Error("Command failed", zap.String("action", action), zap.Error(err))
	}
	return errorMessage(err, h.loc)
}

func isUnexpected(err error) bool {
	for _, known := range []error{
		model.ErrConflict,
		model.ErrInvalidInterval,
		model.ErrInvalidTransition,
		model.ErrNotFound,
		model.ErrForbidden,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
