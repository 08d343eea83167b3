package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/availability"
	"github.com/Freeeeeet/faculty_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

const (
	defaultSlotDays = 7
	// Больше двух недель слотов не помещается в одно сообщение Telegram
	maxSlotDays = 14
)

func (h *Handlers) slots(ctx context.Context, _ *model.User, args []string) string {
	if len(args) < 2 || len(args) > 3 {
		return "Использование: /slots <id преподавателя> <15|30|45|60> [дней]"
	}
	facultyID, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер преподавателя."
	}
	minutes, err := parsePositiveInt(args[1])
	if err != nil {
		return "❌ Длительность указывается в минутах: 15, 30, 45 или 60."
	}
	days := defaultSlotDays
	if len(args) == 3 {
		if days, err = parsePositiveInt(args[2]); err != nil || days > maxSlotDays {
			return fmt.Sprintf("❌ Количество дней: от 1 до %d.", maxSlotDays)
		}
	}

	slots, err := h.services.Scheduling.GetAvailableSlots(ctx, facultyID, daysFrom(h.today(), days), minutes)
	if err != nil {
		return h.fail("get available slots", err)
	}

	if len(slots) == 0 {
		return fmt.Sprintf("😔 У преподавателя нет свободного времени на %d %s вперёд.", days, formatting.PluralizeDays(days))
	}

	return fmt.Sprintf("🕐 Свободное время (%s), %d %s:\n\n%s\nЗапись: /request %d <ГГГГ-ММ-ДД> <ЧЧ:ММ> %d [тема]",
		formatting.FormatDuration(minutes),
		len(slots), formatting.PluralizeSlots(len(slots)),
		formatSlots(slots),
		facultyID, minutes,
	)
}

// formatSlots группирует слоты по дням
func formatSlots(slots []availability.Slot) string {
	var (
		sb    strings.Builder
		day   model.Date
		times []string
	)
	flush := func() {
		if len(times) > 0 {
			fmt.Fprintf(&sb, "📅 %s: %s\n", formatting.FormatDate(day), strings.Join(times, ", "))
		}
		times = times[:0]
	}
	for _, slot := range slots {
		if slot.Date != day {
			flush()
			day = slot.Date
		}
		times = append(times, formatting.FormatTime(slot.Start))
	}
	flush()
	return sb.String()
}

func (h *Handlers) requestMeeting(ctx context.Context, user *model.User, args []string) string {
	if len(args) < 4 {
		return "Использование: /request <id преподавателя> <ГГГГ-ММ-ДД> <ЧЧ:ММ> <минут> [тема]"
	}
	facultyID, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер преподавателя."
	}
	start, err := parseDateTime(args[1], args[2], h.loc)
	if err != nil {
		return "❌ Дата и время указываются в формате ГГГГ-ММ-ДД ЧЧ:ММ."
	}
	minutes, err := parsePositiveInt(args[3])
	if err != nil {
		return "❌ Длительность указывается в минутах: 15, 30, 45 или 60."
	}

	meeting, err := h.services.Meetings.RequestMeeting(ctx, user.ID, facultyID, start, minutes, restArgs(args, 4))
	if err != nil {
		return h.fail("request meeting", err)
	}

	return fmt.Sprintf("📩 Заявка #%d отправлена!\n\n🕐 %s\n⏱ %s\n\nПреподаватель получит уведомление и ответит вам.",
		meeting.ID,
		formatting.FormatInterval(meeting.Interval(), h.loc),
		formatting.FormatDuration(meeting.DurationMinutes),
	)
}

func (h *Handlers) myMeetings(ctx context.Context, user *model.User, _ []string) string {
	meetings, err := h.services.Meetings.ListForStudent(ctx, user.ID)
	if err != nil {
		return h.fail("list student meetings", err)
	}
	if len(meetings) == 0 {
		return "📭 У вас пока нет встреч.\n\nСвободное время преподавателя: /slots"
	}

	var sb strings.Builder
	sb.WriteString("📅 Ваши встречи:\n\n")
	for _, m := range meetings {
		sb.WriteString(h.formatMeeting(m))
		sb.WriteString("\n")
	}
	sb.WriteString("Отменить заявку: /cancelmeeting <id>")
	return sb.String()
}

func (h *Handlers) cancelMeeting(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /cancelmeeting <id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер встречи."
	}
	if _, err := h.services.Meetings.Cancel(ctx, user.ID, id); err != nil {
		return h.fail("cancel meeting", err)
	}
	return fmt.Sprintf("✅ Встреча #%d отменена.", id)
}

func (h *Handlers) formatMeeting(m *model.MeetingRequest) string {
	display := formatting.GetMeetingStatusDisplay(m.Status)
	text := fmt.Sprintf("%s #%d %s\n   %s", display.Emoji, m.ID, formatting.FormatInterval(m.Interval(), h.loc), display.Text)
	if m.Purpose != "" {
		text += "\n   📝 " + m.Purpose
	}
	if m.ResponseMessage != "" {
		text += "\n   💬 " + m.ResponseMessage
	}
	return text + "\n"
}

func (h *Handlers) facultyList(ctx context.Context, _ *model.User, _ []string) string {
	faculty, err := h.services.Users.ListFaculty(ctx)
	if err != nil {
		return h.fail("list faculty", err)
	}
	if len(faculty) == 0 {
		return "📭 Преподавателей пока нет."
	}
	return formatFacultyList(faculty)
}

func formatFacultyList(faculty []*model.User) string {
	var sb strings.Builder
	sb.WriteString("🎓 Преподаватели:\n\n")
	for _, f := range faculty {
		name := f.DisplayName()
		if f.Username != "" && f.Username != name {
			name += " (@" + f.Username + ")"
		}
		fmt.Fprintf(&sb, "#%d %s\n", f.ID, name)
	}
	sb.WriteString("\nСвободное время: /slots <id> <15|30|45|60>")
	return sb.String()
}

func (h *Handlers) myClasses(ctx context.Context, user *model.User, args []string) string {
	rng, ok := h.listDays(args)
	if !ok {
		return "Использование: /myclasses [дней от 1 до 31]"
	}
	if user.GroupID == nil || *user.GroupID == uuid.Nil {
		return "ℹ️ Вы не привязаны к учебной группе. Укажите её: /joingroup <uuid группы>"
	}

	sessions, err := h.services.Classes.ListForGroup(ctx, *user.GroupID, rng)
	if err != nil {
		return h.fail("list group classes", err)
	}
	if len(sessions) == 0 {
		return "📭 У вашей группы нет занятий на этот период."
	}

	names := make(map[int64]string)
	for _, s := range sessions {
		if _, ok := names[s.FacultyID]; ok {
			continue
		}
		names[s.FacultyID] = ""
		faculty, err := h.services.Users.GetByID(ctx, s.FacultyID)
		if err != nil {
			return h.fail("get class faculty", err)
		}
		if faculty != nil {
			names[s.FacultyID] = faculty.DisplayName()
		}
	}
	return h.formatGroupClasses(sessions, names)
}

// formatGroupClasses выводит занятия группы с именами преподавателей
func (h *Handlers) formatGroupClasses(sessions []*model.ClassSession, names map[int64]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Занятия группы, %d %s:\n\n", len(sessions), formatting.PluralizeClasses(len(sessions)))
	for _, s := range sessions {
		sb.WriteString(h.formatClass(s))
		if name := names[s.FacultyID]; name != "" {
			fmt.Fprintf(&sb, "   👤 %s\n", name)
		}
	}
	return sb.String()
}
