package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/service"
)

// Services содержит сервисы, которые нужны командам бота
type Services struct {
	Users      *service.UserService
	Scheduling *service.SchedulingService
	Meetings   *service.MeetingService
	Classes    *service.ClassService
	Activities *service.ActivityService
	Timetable  *service.TimetableService
	Holidays   *service.HolidayService
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	services Services
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(services Services, loc *time.Location, logger *zap.Logger) *Handlers {
	if loc == nil {
		loc = time.UTC
	}
	return &Handlers{
		services: services,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}
