package formatting

import "github.com/Freeeeeet/faculty_scheduler/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

var unknownStatus = StatusDisplay{"❓", "Неизвестно"}

// GetMeetingStatusDisplay возвращает emoji и текст для статуса встречи
func GetMeetingStatusDisplay(status model.MeetingStatus) StatusDisplay {
	displays := map[model.MeetingStatus]StatusDisplay{
		model.MeetingStatusPending:   {"⏳", "Ожидает ответа"},
		model.MeetingStatusApproved:  {"✅", "Подтверждена"},
		model.MeetingStatusRejected:  {"🚫", "Отклонена"},
		model.MeetingStatusCompleted: {"✔️", "Состоялась"},
		model.MeetingStatusCancelled: {"❌", "Отменена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// GetClassStatusDisplay возвращает emoji и текст для статуса занятия
func GetClassStatusDisplay(status model.ClassStatus) StatusDisplay {
	displays := map[model.ClassStatus]StatusDisplay{
		model.ClassStatusScheduled:   {"🟢", "По расписанию"},
		model.ClassStatusCompleted:   {"✔️", "Проведено"},
		model.ClassStatusCancelled:   {"⚫️", "Отменено"},
		model.ClassStatusRescheduled: {"🔁", "Перенесено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// GetEntityName возвращает название типа записи в расписании в именительном падеже
func GetEntityName(t model.EntityType) string {
	names := map[model.EntityType]string{
		model.EntityWeeklySlot:     "занятие по расписанию",
		model.EntityClassSession:   "занятие",
		model.EntityMeetingRequest: "встреча",
		model.EntityActivity:       "мероприятие",
		model.EntityHoliday:        "праздничный день",
	}

	if name, ok := names[t]; ok {
		return name
	}
	return string(t)
}
