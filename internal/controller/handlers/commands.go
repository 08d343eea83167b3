package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Для студентов:\n" +
	"/faculty - Список преподавателей\n" +
	"/slots <id преподавателя> <минут> [дней] - Свободное время преподавателя\n" +
	"/request <id преподавателя> <ГГГГ-ММ-ДД> <ЧЧ:ММ> <минут> [тема] - Запросить встречу\n" +
	"/mymeetings - Мои встречи\n" +
	"/cancelmeeting <id> - Отменить встречу\n" +
	"/myclasses [дней] - Занятия моей группы\n" +
	"/joingroup <uuid группы> - Указать учебную группу\n\n" +
	"Для преподавателей:\n" +
	"/becomefaculty - Зарегистрироваться как преподаватель\n" +
	"/meetings - Заявки и встречи\n" +
	"/approve <id> [сообщение] - Подтвердить встречу\n" +
	"/reject <id> [сообщение] - Отклонить встречу\n" +
	"/completemeeting <id> - Отметить встречу как состоявшуюся\n" +
	"/classes [дней] - Мои занятия\n" +
	"/completeclass <id> [заметки] - Отметить занятие проведённым\n" +
	"/cancelclass <id> [причина] - Отменить занятие\n" +
	"/reschedule <id> <ГГГГ-ММ-ДД> <ЧЧ:ММ> - Перенести занятие\n" +
	"/timetable - Недельное расписание\n" +
	"/setslot <день> <ЧЧ:ММ> <часов> <предмет> - Добавить пару в расписание\n" +
	"/removeslot <id> - Удалить пару из расписания\n" +
	"/activity <ГГГГ-ММ-ДД> <ЧЧ:ММ> <ГГГГ-ММ-ДД> <ЧЧ:ММ> <тип> <название> - Добавить мероприятие\n" +
	"/activities [дней] - Мои мероприятия\n" +
	"/deleteactivity <id> - Удалить мероприятие\n" +
	"/generate <ГГГГ-ММ-ДД> <ГГГГ-ММ-ДД> - Создать занятия по расписанию\n\n" +
	"Для администраторов:\n" +
	"/holidays - Праздничные дни\n" +
	"/addholiday <ГГГГ-ММ-ДД> <once|yearly> <название> - Добавить праздник\n" +
	"/removeholiday <id> - Удалить праздник\n" +
	"/conflicts [дней] - Накладки в расписании групп"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From

	// Регистрируем пользователя
	user, err := h.services.Users.RegisterUser(
		ctx,
		from.ID,
		from.Username,
		from.FirstName,
		from.LastName,
		from.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, startText(user))
}

func startText(user *model.User) string {
	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот расписания кафедры: здесь можно посмотреть свободное время преподавателя "+
			"и записаться на консультацию.\n\n"+
			"🆔 Ваш номер: %d\n",
		user.DisplayName(),
		user.ID,
	)
	if user.IsFaculty() {
		text += "🎓 Вы зарегистрированы как преподаватель.\n"
	}
	return text + "\nСписок команд: /help"
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleUnknown отвечает на сообщения, которые не являются известными командами
func (h *Handlers) HandleUnknown(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🤔 Неизвестная команда. Используйте /help для просмотра доступных команд.")
}

func (h *Handlers) becomeFaculty(ctx context.Context, user *model.User, _ []string) string {
	if user.IsFaculty() {
		return "ℹ️ Вы уже преподаватель."
	}
	if err := h.services.Users.MakeFaculty(ctx, user.ID); err != nil {
		return h.fail("become faculty", err)
	}
	return fmt.Sprintf("🎓 Теперь вы преподаватель!\n\n"+
		"Студенты могут найти ваше свободное время по номеру %d.\n"+
		"Добавьте пары в расписание командой /setslot.", user.ID)
}

func (h *Handlers) joinGroup(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /joingroup <uuid группы>"
	}
	groupID, err := uuid.Parse(args[0])
	if err != nil || groupID == uuid.Nil {
		return "❌ Некорректный идентификатор группы."
	}
	if err := h.services.Users.JoinGroup(ctx, user.ID, groupID); err != nil {
		return h.fail("join group", err)
	}
	return "✅ Группа сохранена. Вы будете получать уведомления об отмене и переносе занятий."
}

func (h *Handlers) today() model.Date {
	return model.DateOf(h.now().In(h.loc))
}
