package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует календарную дату с коротким днём недели
func FormatDate(d model.Date) string {
	return fmt.Sprintf("%02d.%02d (%s)", d.Day, int(d.Month), GetWeekdayShortName(d.Weekday()))
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatInterval форматирует интервал; если он переходит через полночь, показывает обе даты
func FormatInterval(iv model.TimeInterval, loc *time.Location) string {
	iv = iv.In(loc)
	if model.DateOf(iv.Start) == model.DateOf(iv.End) || iv.End.Equal(model.DateOf(iv.Start).AddDays(1).In(loc)) {
		return fmt.Sprintf("%s %s-%s", iv.Start.Format("02.01.2006"), FormatTime(iv.Start), FormatTime(iv.End))
	}
	return fmt.Sprintf("%s - %s", FormatDateTime(iv.Start), FormatDateTime(iv.End))
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

var weekdayNames = []string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

var weekdayShortNames = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// GetWeekdayName возвращает название дня недели на русском
func GetWeekdayName(weekday time.Weekday) string {
	if weekday >= 0 && int(weekday) < len(weekdayNames) {
		return weekdayNames[weekday]
	}
	return "Неизвестно"
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday time.Weekday) string {
	if weekday >= 0 && int(weekday) < len(weekdayShortNames) {
		return weekdayShortNames[weekday]
	}
	return "?"
}

// ParseWeekday понимает "пн", "понедельник", "mon", "monday" и номер дня 1-6
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range weekdayNames {
		wd := time.Weekday(i)
		if s == strings.ToLower(weekdayNames[i]) ||
			s == strings.ToLower(weekdayShortNames[i]) ||
			s == strings.ToLower(wd.String()) ||
			s == strings.ToLower(wd.String()[:3]) ||
			s == fmt.Sprint(i) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
