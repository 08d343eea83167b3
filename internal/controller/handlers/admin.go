package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/faculty_scheduler/internal/controller/formatting"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/service"
)

func (h *Handlers) holidays(ctx context.Context, _ *model.User, _ []string) string {
	list, err := h.services.Holidays.List(ctx)
	if err != nil {
		return h.fail("list holidays", err)
	}
	if len(list) == 0 {
		return "📭 Праздничных дней нет."
	}

	var sb strings.Builder
	sb.WriteString("🎉 Праздничные дни:\n\n")
	for _, hol := range list {
		date := hol.Date.String()
		if hol.IsRecurring {
			date = fmt.Sprintf("%02d.%02d ежегодно", hol.Date.Day, int(hol.Date.Month))
		}
		fmt.Fprintf(&sb, "#%d %s %s\n", hol.ID, date, hol.Name)
	}
	return sb.String()
}

func (h *Handlers) addHoliday(ctx context.Context, user *model.User, args []string) string {
	if len(args) < 3 || (args[1] != "once" && args[1] != "yearly") {
		return "Использование: /addholiday <ГГГГ-ММ-ДД> <once|yearly> <название>"
	}
	date, err := parseDate(args[0])
	if err != nil {
		return "❌ Дата указывается в формате ГГГГ-ММ-ДД."
	}

	holiday, err := h.services.Holidays.Create(ctx, user.ID, &model.Holiday{
		Name:        restArgs(args, 2),
		Date:        date,
		IsRecurring: args[1] == "yearly",
	})
	if err != nil {
		return h.fail("create holiday", err)
	}
	return fmt.Sprintf("🎉 Праздник #%d «%s» добавлен.", holiday.ID, holiday.Name)
}

func (h *Handlers) removeHoliday(ctx context.Context, user *model.User, args []string) string {
	if len(args) != 1 {
		return "Использование: /removeholiday <id>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return "❌ Некорректный номер праздника."
	}
	if err := h.services.Holidays.Delete(ctx, user.ID, id); err != nil {
		return h.fail("delete holiday", err)
	}
	return fmt.Sprintf("🗑 Праздник #%d удалён.", id)
}

func (h *Handlers) conflicts(ctx context.Context, user *model.User, args []string) string {
	rng, ok := h.listDays(args)
	if !ok {
		return "Использование: /conflicts [дней от 1 до 31]"
	}
	list, err := h.services.Classes.GroupConflicts(ctx, user.ID, rng)
	if err != nil {
		return h.fail("find group conflicts", err)
	}
	if len(list) == 0 {
		return "✅ Накладок в расписании групп нет."
	}
	return h.formatConflicts(list)
}

func (h *Handlers) formatConflicts(list []service.GroupConflict) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ Накладки в расписании групп: %d\n", len(list))
	for _, c := range list {
		fmt.Fprintf(&sb, "\n👥 %s\n   %s\n   %s\n", c.GroupID, h.heldClass(c.First), h.heldClass(c.Second))
	}
	return sb.String()
}

func (h *Handlers) heldClass(s *model.ClassSession) string {
	iv, _ := s.HeldInterval()
	return fmt.Sprintf("#%d %s «%s», преподаватель #%d", s.ID, formatting.FormatInterval(iv, h.loc), s.Subject, s.FacultyID)
}
