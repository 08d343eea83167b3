package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

const defaultListDays = 7

func (h *Handlers) facultyMeetings(ctx context.Context, user *model.User, _ []string) string {
	meetings, err := h.services.Meetings.ListForFaculty(ctx, user.ID, model.MeetingStatusPending, model.MeetingStatusApproved)
	if err != nil {
		return h.fail("list faculty meetings", err)
	}
	if len(meetings) == 0 {
		return "📭 Нет новых заявок и запланированных встреч."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %d %s:\n\n", len(meetings), formatting.PluralizeMeetings(len(meetings)))
	for _, m := range meetings {
		sb.WriteString(h.formatMeeting(m))
		sb.WriteString("\n")
	}
	sb.WriteString("Ответить: /approve <id> [сообщение] или /reject <id> [сообщение]")
	return sb.String()
}

// idWithText разбирает "<id> [текст]"
func idWithText(args []string) (int64, string, bool) {
	if len(args) == 0 {
		return 0, "", false
	}
	id, err := parseID(args[0])
	if err != nil {
		return 0, "", false
	}
	return id, restArgs(args, 1), true
}

func (h *Handlers) approveMeeting(ctx context.Context, user *model.User, args []string) string {
	id, message, ok := idWithText(args)
	if !ok {
		return "Использование: /approve <id> [сообщение]"
	}
	m, err := h.services.Meetings.Approve(ctx, user.ID, id, message)
	if err != nil {
		return h.fail("approve meeting", err)
	}
	return fmt.Sprintf("✅ Встреча #%d подтверждена: %s", m.ID, formatting.FormatInterval(m.Interval(), h.loc))
}

func (h *Handlers) rejectMeeting(ctx context.Context, user *model.User, args []string) string {
	id, message, ok := idWithText(args)
	if !ok {
		return "Использование: /reject <id> [сообщение]"
	}
	if _, err := h.services.Meetings.Reject(ctx, user.ID, id, message); err != nil {
		return h.fail("reject meeting", err)
	}
	return fmt.Sprintf("🚫 Заявка #%d отклонена.", id)
}

func (h *Handlers) completeMeeting(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /completemeeting <id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер встречи."
	}
	if _, err := h.services.Meetings.Complete(ctx, user.ID, id); err != nil {
		return h.fail("complete meeting", err)
	}
	return fmt.Sprintf("✔️ Встреча #%d отмечена как состоявшаяся.", id)
}

func (h *Handlers) listDays(args []string) (model.DateRange, bool) {
	days := defaultListDays
	if len(args) > 0 {
		n, err := parsePositiveInt(args[0])
		if err != nil || n > 31 {
			return model.DateRange{}, false
		}
		days = n
	}
	return daysFrom(h.today(), days), true
}

func (h *Handlers) classes(ctx context.Context, user *model.User, args []string) string {
	rng, ok := h.listDays(args)
	if !ok {
		return "Использование: /classes [дней от 1 до 31]"
	}
	sessions, err := h.services.Classes.List(ctx, user.ID, rng)
	if err != nil {
		return h.fail("list classes", err)
	}
	if len(sessions) == 0 {
		return "📭 Занятий на этот период нет. Создать занятия по расписанию: /generate"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 %d %s:\n\n", len(sessions), formatting.PluralizeClasses(len(sessions)))
	for _, s := range sessions {
		sb.WriteString(h.formatClass(s))
	}
	return sb.String()
}

// formatClass выводит занятие одной строкой; у перенесённого добавляется новое время
func (h *Handlers) formatClass(s *model.ClassSession) string {
	display := formatting.GetClassStatusDisplay(s.Status)
	text := fmt.Sprintf("%s #%d %s «%s»\n", display.Emoji, s.ID, formatting.FormatInterval(s.Interval(), h.loc), s.Subject)
	if s.RescheduledTo != nil {
		if busy, ok := s.BusyInterval(); ok {
			text += fmt.Sprintf("   ➡️ %s\n", formatting.FormatInterval(busy, h.loc))
		}
	}
	return text
}

func (h *Handlers) completeClass(ctx context.Context, user *model.User, args []string) string {
	id, notes, ok := idWithText(args)
	if !ok {
		return "Использование: /completeclass <id> [заметки]"
	}
	if _, err := h.services.Classes.Complete(ctx, user.ID, id, notes); err != nil {
		return h.fail("complete class", err)
	}
	return fmt.Sprintf("✔️ Занятие #%d проведено.", id)
}

func (h *Handlers) cancelClass(ctx context.Context, user *model.User, args []string) string {
	id, reason, ok := idWithText(args)
	if !ok {
		return "Использование: /cancelclass <id> [причина]"
	}
	if _, err := h.services.Classes.Cancel(ctx, user.ID, id, reason); err != nil {
		return h.fail("cancel class", err)
	}
	return fmt.Sprintf("⚫️ Занятие #%d отменено. Студенты группы получат уведомление.", id)
}

func (h *Handlers) rescheduleClass(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 3 {
		return "Использование: /reschedule <id> <ГГГГ-ММ-ДД> <ЧЧ:ММ>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер занятия."
	}
	start, err := parseDateTime(args[1], args[2], h.loc)
	if err != nil {
		return "❌ Дата и время указываются в формате ГГГГ-ММ-ДД ЧЧ:ММ."
	}

	s, err := h.services.Classes.Reschedule(ctx, user.ID, id, start)
	if err != nil {
		return h.fail("reschedule class", err)
	}
	busy, _ := s.BusyInterval()
	return fmt.Sprintf("🔁 Занятие #%d перенесено на %s.", s.ID, formatting.FormatInterval(busy, h.loc))
}

func (h *Handlers) timetable(ctx context.Context, user *model.User, _ []string) string {
	slots, err := h.services.Timetable.GetWeeklySlots(ctx, user.ID)
	if err != nil {
		return h.fail("get weekly slots", err)
	}
	if len(slots) == 0 {
		return "📭 Недельное расписание пусто.\n\nДобавить пару: /setslot <день> <ЧЧ:ММ> <часов> <предмет>"
	}

	var sb strings.Builder
	sb.WriteString("📆 Недельное расписание:\n\n")
	for _, s := range slots {
		fmt.Fprintf(&sb, "#%d %s %02d:%02d, %s «%s»\n",
			s.ID,
			formatting.GetWeekdayName(s.Weekday),
			s.StartHour, s.StartMinute,
			formatting.FormatDuration(s.DurationHours*60),
			s.Subject,
		)
	}
	return sb.String()
}

func (h *Handlers) setSlot(ctx context.Context, user *model.User, args []string) string {
	if len(args) < 4 {
		return "Использование: /setslot <день> <ЧЧ:ММ> <часов> [uuid группы] <предмет>"
	}
	weekday, err := formatting.ParseWeekday(args[0])
	if err != nil {
		return "❌ Неизвестный день недели. Пример: пн, вт, ср."
	}
	hour, minute, err := parseClock(args[1])
	if err != nil {
		return "❌ Время указывается в формате ЧЧ:ММ."
	}
	hours, err := parsePositiveInt(args[2])
	if err != nil {
		return "❌ Продолжительность указывается в часах: от 1 до 3."
	}

	slot := &model.WeeklySlot{
		Weekday:       weekday,
		StartHour:     hour,
		StartMinute:   minute,
		DurationHours: hours,
		Subject:       restArgs(args, 3),
	}
	if groupID, err := uuid.Parse(args[3]); err == nil {
		slot.GroupID = groupID
		slot.Subject = restArgs(args, 4)
	}

	saved, err := h.services.Timetable.SetWeeklySlot(ctx, user.ID, slot)
	if err != nil {
		return h.fail("set weekly slot", err)
	}
	return fmt.Sprintf("✅ Пара #%d сохранена: %s %02d:%02d, %s.\n\nСоздать занятия на семестр: /generate <с> <по>",
		saved.ID, formatting.GetWeekdayName(saved.Weekday), saved.StartHour, saved.StartMinute,
		formatting.FormatDuration(saved.DurationHours*60))
}

func (h *Handlers) removeSlot(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /removeslot <id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер пары."
	}
	if err := h.services.Timetable.RemoveWeeklySlot(ctx, user.ID, id); err != nil {
		return h.fail("remove weekly slot", err)
	}
	return fmt.Sprintf("🗑 Пара #%d удалена из расписания. Уже созданные занятия остались без изменений.", id)
}

func (h *Handlers) createActivity(ctx context.Context, user *model.User, args []string) string {
	if len(args) < 6 {
		return "Использование: /activity <ГГГГ-ММ-ДД> <ЧЧ:ММ> <ГГГГ-ММ-ДД> <ЧЧ:ММ> <тип> <название>"
	}
	start, err := parseDateTime(args[0], args[1], h.loc)
	if err != nil {
		return "❌ Начало указывается в формате ГГГГ-ММ-ДД ЧЧ:ММ."
	}
	end, err := parseDateTime(args[2], args[3], h.loc)
	if err != nil {
		return "❌ Окончание указывается в формате ГГГГ-ММ-ДД ЧЧ:ММ."
	}

	activity, err := h.services.Activities.Create(ctx, user.ID, &model.Activity{
		ActivityType: args[4],
		Title:        restArgs(args, 5),
		StartTime:    start,
		EndTime:      end,
	})
	if err != nil {
		return h.fail("create activity", err)
	}
	return fmt.Sprintf("📌 Мероприятие #%d «%s» добавлено: %s", activity.ID, activity.Title, formatting.FormatInterval(activity.Interval(), h.loc))
}

func (h *Handlers) activities(ctx context.Context, user *model.User, args []string) string {
	rng, ok := h.listDays(args)
	if !ok {
		return "Использование: /activities [дней от 1 до 31]"
	}
	list, err := h.services.Activities.List(ctx, user.ID, rng)
	if err != nil {
		return h.fail("list activities", err)
	}
	if len(list) == 0 {
		return "📭 Мероприятий на этот период нет."
	}

	var sb strings.Builder
	sb.WriteString("📌 Мероприятия:\n\n")
	for _, a := range list {
		fmt.Fprintf(&sb, "#%d %s [%s] %s\n", a.ID, formatting.FormatInterval(a.Interval(), h.loc), a.ActivityType, a.Title)
	}
	return sb.String()
}

func (h *Handlers) deleteActivity(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /deleteactivity <id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер мероприятия."
	}
	if err := h.services.Activities.Delete(ctx, user.ID, id); err != nil {
		return h.fail("delete activity", err)
	}
	return fmt.Sprintf("🗑 Мероприятие #%d удалено.", id)
}

func (h *Handlers) generate(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 2 {
		return "Использование: /generate <ГГГГ-ММ-ДД> <ГГГГ-ММ-ДД>"
	}
	from, err := parseDate(args[0])
	if err != nil {
		return "❌ Дата указывается в формате ГГГГ-ММ-ДД."
	}
	to, err := parseDate(args[1])
	if err != nil {
		return "❌ Дата указывается в формате ГГГГ-ММ-ДД."
	}
	rng, err := model.NewDateRange(from, to)
	if err != nil {
		return h.fail("generate sessions", err)
	}

	created, err := h.services.Classes.GenerateSessions(ctx, user.ID, rng)
	if err != nil {
		return h.fail("generate sessions", err)
	}
	return fmt.Sprintf("✅ Создано %d %s с %s по %s.", created, formatting.PluralizeClasses(int(created)), from, to)
}
