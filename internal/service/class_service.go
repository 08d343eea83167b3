package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/availability"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// ClassService materialises weekly slots into dated class sessions and
// manages their lifecycle.
type ClassService struct {
	repos      repository.Repositories
	txm        repository.TxManager
	scheduling *SchedulingService
	settings   Settings
	logger     *zap.Logger
}

func NewClassService(repos repository.Repositories, txm repository.TxManager, scheduling *SchedulingService, settings Settings, logger *zap.Logger) *ClassService {
	return &ClassService{
		repos:      repos,
		txm:        txm,
		scheduling: scheduling,
		settings:   settings.withDefaults(),
		logger:     logger,
	}
}

// GenerateSessions создаёт занятия по недельному расписанию на диапазон дат.
// Праздники и прошедшие даты пропускаются, уже созданные занятия не дублируются.
func (s *ClassService) GenerateSessions(ctx context.Context, facultyID int64, rng model.DateRange) (int64, error) {
	if err := rng.Validate(); err != nil {
		return 0, err
	}

	var inserted int64
	err := s.txm.WithFacultyLock(ctx, facultyID, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := getFaculty(ctx, repos, facultyID); err != nil {
			return err
		}

		slots, err := repos.WeeklySlots.ListByFaculty(ctx, facultyID)
		if err != nil {
			return fmt.Errorf("list weekly slots: %w", err)
		}
		holidays, err := repos.Holidays.ListForRange(ctx, rng)
		if err != nil {
			return fmt.Errorf("list holidays: %w", err)
		}

		occurrences, err := availability.Expand(slots, rng, holidays, s.settings.Location)
		if err != nil {
			return fmt.Errorf("expand weekly slots: %w", err)
		}

		byID := make(map[int64]*model.WeeklySlot, len(slots))
		for _, slot := range slots {
			byID[slot.ID] = slot
		}

		now := s.settings.Now()
		sessions := make([]*model.ClassSession, 0, len(occurrences))
		for _, occ := range occurrences {
			// Пропускаем прошедшие занятия
			if occ.Interval.Start.Before(now) {
				continue
			}
			slot := byID[occ.SlotID]
			slotID := slot.ID
			sessions = append(sessions, &model.ClassSession{
				FacultyID:     facultyID,
				WeeklySlotID:  &slotID,
				GroupID:       slot.GroupID,
				Subject:       slot.Subject,
				StartTime:     occ.Interval.Start,
				DurationHours: slot.DurationHours,
				Status:        model.ClassStatusScheduled,
			})
		}

		inserted, err = repos.ClassSessions.InsertGenerated(ctx, sessions)
		if err != nil {
			return err
		}
		if inserted == 0 {
			return nil
		}

		return emit(ctx, repos, model.EventSessionsGenerated, model.NotificationPayload{
			Entity:  model.EntityRef{Type: model.EntityWeeklySlot},
			UserIDs: []int64{facultyID},
			Message: fmt.Sprintf("📅 Создано занятий по расписанию: %d (%s)", inserted, rng),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("generate sessions: %w", err)
	}

	s.logger.Info("Class sessions generated",
		zap.Int64("faculty_id", facultyID),
		zap.Stringer("range", rng),
		zap.Int64("created", inserted),
	)

	return inserted, nil
}

// GenerateUpcoming генерирует занятия всех преподавателей на weeksAhead недель вперёд.
// Вызывается периодически планировщиком.
func (s *ClassService) GenerateUpcoming(ctx context.Context, weeksAhead int) (int64, error) {
	faculty, err := s.repos.Users.ListFaculty(ctx)
	if err != nil {
		return 0, fmt.Errorf("list faculty: %w", err)
	}

	today := model.DateOf(s.settings.Now().In(s.settings.Location))
	rng := model.DateRange{From: today, To: today.AddDays(weeksAhead*7 - 1)}

	var total int64
	for _, f := range faculty {
		count, err := s.GenerateSessions(ctx, f.ID, rng)
		if err != nil {
			s.logger.Error("Failed to generate class sessions",
				zap.Error(err),
				zap.Int64("faculty_id", f.ID),
			)
			continue
		}
		total += count
	}

	s.logger.Info("Generated class sessions for all faculty",
		zap.Int("total_faculty", len(faculty)),
		zap.Int64("total_sessions_created", total),
	)

	return total, nil
}

// Complete отмечает занятие проведённым
func (s *ClassService) Complete(ctx context.Context, facultyID, classID int64, notes string) (*model.ClassSession, error) {
	return s.mutate(ctx, MutationRequest{Kind: MutationCompleteClass, ActorID: facultyID, EntityID: classID, Message: notes})
}

// Cancel отменяет занятие и освобождает его время
func (s *ClassService) Cancel(ctx context.Context, facultyID, classID int64, reason string) (*model.ClassSession, error) {
	return s.mutate(ctx, MutationRequest{Kind: MutationCancelClass, ActorID: facultyID, EntityID: classID, Message: reason})
}

// Reschedule переносит занятие на новое время, если оно свободно
func (s *ClassService) Reschedule(ctx context.Context, facultyID, classID int64, newStart time.Time) (*model.ClassSession, error) {
	return s.mutate(ctx, MutationRequest{Kind: MutationRescheduleClass, ActorID: facultyID, EntityID: classID, NewStart: newStart})
}

// CreateOneOff создаёт разовое занятие вне недельного расписания
func (s *ClassService) CreateOneOff(ctx context.Context, facultyID int64, session *model.ClassSession) (*model.ClassSession, error) {
	return s.mutate(ctx, MutationRequest{Kind: MutationCreateClass, ActorID: facultyID, Class: session})
}

func (s *ClassService) mutate(ctx context.Context, req MutationRequest) (*model.ClassSession, error) {
	result, err := s.scheduling.ValidateAndCommit(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Class, nil
}

// List возвращает занятия преподавателя в диапазоне дат
func (s *ClassService) List(ctx context.Context, facultyID int64, rng model.DateRange) ([]*model.ClassSession, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	from, to := rng.Bounds(s.settings.Location)
	return s.repos.ClassSessions.ListByFaculty(ctx, facultyID, from, to)
}

// ListForGroup возвращает занятия учебной группы у всех преподавателей
func (s *ClassService) ListForGroup(ctx context.Context, groupID uuid.UUID, rng model.DateRange) ([]*model.ClassSession, error) {
	if groupID == uuid.Nil {
		return nil, fmt.Errorf("list group classes: empty group id")
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	from, to := rng.Bounds(s.settings.Location)
	return s.repos.ClassSessions.ListByGroup(ctx, groupID, from, to)
}

// GroupConflict is a pair of sessions that put one student group into two
// classes at once.
type GroupConflict struct {
	GroupID uuid.UUID
	First   *model.ClassSession
	Second  *model.ClassSession
}

// GroupConflicts находит накладки в расписании групп: неотменённые занятия,
// которые проходят у одной группы одновременно. Доступно только администратору.
func (s *ClassService) GroupConflicts(ctx context.Context, adminID int64, rng model.DateRange) ([]GroupConflict, error) {
	if err := requireAdmin(ctx, s.repos, adminID); err != nil {
		return nil, err
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	from, to := rng.Bounds(s.settings.Location)
	sessions, err := s.repos.ClassSessions.ListGrouped(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list grouped sessions: %w", err)
	}

	window := model.TimeInterval{Start: from, End: to}

	type held struct {
		session  *model.ClassSession
		interval model.TimeInterval
	}
	byGroup := make(map[uuid.UUID][]held)
	var groups []uuid.UUID
	for _, session := range sessions {
		iv, ok := session.HeldInterval()
		if !ok || session.GroupID == uuid.Nil || !iv.Overlaps(window) {
			continue
		}
		if _, seen := byGroup[session.GroupID]; !seen {
			groups = append(groups, session.GroupID)
		}
		byGroup[session.GroupID] = append(byGroup[session.GroupID], held{session: session, interval: iv})
	}

	var conflicts []GroupConflict
	for _, group := range groups {
		list := byGroup[group]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].interval.Start.Before(list[j].interval.Start)
		})
		for i := range list {
			for j := i + 1; j < len(list) && list[j].interval.Start.Before(list[i].interval.End); j++ {
				conflicts = append(conflicts, GroupConflict{GroupID: group, First: list[i].session, Second: list[j].session})
			}
		}
	}

	s.logger.Info("Group conflicts checked",
		zap.Stringer("range", rng),
		zap.Int("sessions", len(sessions)),
		zap.Int("conflicts", len(conflicts)),
	)

	return conflicts, nil
}
