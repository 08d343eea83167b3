package handlers

import "github.com/go-telegram/bot"

// Command описывает команду бота и пункт меню для неё
type Command struct {
	Name        string
	Description string
	Handler     bot.HandlerFunc
	// Hidden команды не показываются в меню бота
	Hidden bool
}

// Commands возвращает все команды бота
func (h *Handlers) Commands() []Command {
	return []Command{
		{Name: "start", Description: "🚀 Начать работу с ботом", Handler: h.HandleStart},
		{Name: "help", Description: "❓ Справка по командам", Handler: h.HandleHelp},
		{Name: "joingroup", Description: "👥 Указать учебную группу", Handler: h.userCommand(h.joinGroup)},

		// Студенты
		{Name: "faculty", Description: "🎓 Список преподавателей", Handler: h.userCommand(h.facultyList)},
		{Name: "slots", Description: "🕐 Свободное время преподавателя", Handler: h.userCommand(h.slots)},
		{Name: "request", Description: "📩 Запросить встречу", Handler: h.userCommand(h.requestMeeting)},
		{Name: "mymeetings", Description: "📅 Мои встречи", Handler: h.userCommand(h.myMeetings)},
		{Name: "cancelmeeting", Description: "❌ Отменить встречу", Handler: h.userCommand(h.cancelMeeting)},
		{Name: "myclasses", Description: "🗓 Занятия моей группы", Handler: h.userCommand(h.myClasses)},

		// Преподаватели
		{Name: "becomefaculty", Description: "🎓 Стать преподавателем", Handler: h.userCommand(h.becomeFaculty)},
		{Name: "meetings", Description: "📋 Заявки и встречи (преподаватель)", Handler: h.facultyCommand(h.facultyMeetings)},
		{Name: "approve", Handler: h.facultyCommand(h.approveMeeting), Hidden: true},
		{Name: "reject", Handler: h.facultyCommand(h.rejectMeeting), Hidden: true},
		{Name: "completemeeting", Handler: h.facultyCommand(h.completeMeeting), Hidden: true},
		{Name: "classes", Description: "🗓 Мои занятия (преподаватель)", Handler: h.facultyCommand(h.classes)},
		{Name: "completeclass", Handler: h.facultyCommand(h.completeClass), Hidden: true},
		{Name: "cancelclass", Handler: h.facultyCommand(h.cancelClass), Hidden: true},
		{Name: "reschedule", Handler: h.facultyCommand(h.rescheduleClass), Hidden: true},
		{Name: "timetable", Description: "📆 Недельное расписание (преподаватель)", Handler: h.facultyCommand(h.timetable)},
		{Name: "setslot", Handler: h.facultyCommand(h.setSlot), Hidden: true},
		{Name: "removeslot", Handler: h.facultyCommand(h.removeSlot), Hidden: true},
		{Name: "activity", Handler: h.facultyCommand(h.createActivity), Hidden: true},
		{Name: "activities", Description: "📌 Мои мероприятия (преподаватель)", Handler: h.facultyCommand(h.activities)},
		{Name: "deleteactivity", Handler: h.facultyCommand(h.deleteActivity), Hidden: true},
		{Name: "generate", Handler: h.facultyCommand(h.generate), Hidden: true},

		// Администраторы
		{Name: "holidays", Handler: h.adminCommand(h.holidays), Hidden: true},
		{Name: "addholiday", Handler: h.adminCommand(h.addHoliday), Hidden: true},
		{Name: "removeholiday", Handler: h.adminCommand(h.removeHoliday), Hidden: true},
		{Name: "conflicts", Handler: h.adminCommand(h.conflicts), Hidden: true},
	}
}
