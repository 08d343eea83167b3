package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// TimetableService manages the recurring weekly timetable of faculty members.
type TimetableService struct {
	txm    repository.TxManager
	repos  repository.Repositories
	logger *zap.Logger
}

func NewTimetableService(repos repository.Repositories, txm repository.TxManager, logger *zap.Logger) *TimetableService {
	return &TimetableService{
		txm:    txm,
		repos:  repos,
		logger: logger,
	}
}

// SetWeeklySlot создаёт слот недельного расписания или заменяет слот с тем же днём и временем начала.
// Слот не может пересекаться с другими слотами того же дня.
func (s *TimetableService) SetWeeklySlot(ctx context.Context, facultyID int64, slot *model.WeeklySlot) (*model.WeeklySlot, error) {
	slot.FacultyID = facultyID
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	err := s.txm.WithFacultyLock(ctx, facultyID, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := getFaculty(ctx, repos, facultyID); err != nil {
			return err
		}

		existing, err := repos.WeeklySlots.ListByFaculty(ctx, facultyID)
		if err != nil {
			return fmt.Errorf("list weekly slots: %w", err)
		}

		// 1 января 2024 года был понедельником: номер дня совпадает с днём недели
		refDay := model.Date{Year: 2024, Month: 1, Day: int(slot.Weekday)}
		proposed := slot.Occurrence(refDay, time.UTC)
		for _, other := range existing {
			if other.Weekday != slot.Weekday || other.Key() == slot.Key() {
				continue
			}
			if iv := other.Occurrence(refDay, time.UTC); iv.Overlaps(proposed) {
				return &model.ConflictError{Entity: model.EntityRef{Type: model.EntityWeeklySlot, ID: other.ID}, Interval: iv}
			}
		}

		return repos.WeeklySlots.Upsert(ctx, slot)
	})
	if err != nil {
		return nil, fmt.Errorf("set weekly slot: %w", err)
	}

	s.logger.Info("Weekly slot saved",
		zap.Int64("weekly_slot_id", slot.ID),
		zap.Int64("faculty_id", facultyID),
		zap.Stringer("weekday", slot.Weekday),
		zap.Int("start_hour", slot.StartHour),
		zap.Int("start_minute", slot.StartMinute),
	)

	return slot, nil
}

// RemoveWeeklySlot удаляет слот; уже созданные занятия остаются в силе
func (s *TimetableService) RemoveWeeklySlot(ctx context.Context, facultyID, slotID int64) error {
	err := s.txm.WithFacultyLock(ctx, facultyID, func(ctx context.Context, repos repository.Repositories) error {
		slot, err := repos.WeeklySlots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get weekly slot: %w", err)
		}
		if slot == nil {
			return model.NotFoundError(model.EntityWeeklySlot, slotID)
		}
		if slot.FacultyID != facultyID {
			return fmt.Errorf("weekly slot %d: %w", slotID, model.ErrForbidden)
		}
		return repos.WeeklySlots.Delete(ctx, slotID)
	})
	if err != nil {
		return fmt.Errorf("remove weekly slot: %w", err)
	}

	s.logger.Info("Weekly slot removed",
		zap.Int64("weekly_slot_id", slotID),
		zap.Int64("faculty_id", facultyID),
	)

	return nil
}

func (s *TimetableService) GetWeeklySlots(ctx context.Context, facultyID int64) ([]*model.WeeklySlot, error) {
	return s.repos.WeeklySlots.ListByFaculty(ctx, facultyID)
}
