package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/availability"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

type MutationKind string

const (
	MutationApproveMeeting  MutationKind = "approve_meeting"
	MutationRejectMeeting   MutationKind = "reject_meeting"
	MutationCompleteMeeting MutationKind = "complete_meeting"
	MutationCancelMeeting   MutationKind = "cancel_meeting"
	MutationCompleteClass   MutationKind = "complete_class"
	MutationCancelClass     MutationKind = "cancel_class"
	MutationRescheduleClass MutationKind = "reschedule_class"
	MutationCreateClass     MutationKind = "create_class"
	MutationCreateActivity  MutationKind = "create_activity"
	MutationUpdateActivity  MutationKind = "update_activity"
	MutationDeleteActivity  MutationKind = "delete_activity"
)

var meetingEvents = map[MutationKind]model.MeetingEvent{
	MutationApproveMeeting:  model.MeetingEventApprove,
	MutationRejectMeeting:   model.MeetingEventReject,
	MutationCompleteMeeting: model.MeetingEventComplete,
	MutationCancelMeeting:   model.MeetingEventCancel,
}

var classEvents = map[MutationKind]model.ClassEvent{
	MutationCompleteClass:   model.ClassEventComplete,
	MutationCancelClass:     model.ClassEventCancel,
	MutationRescheduleClass: model.ClassEventReschedule,
}

// MutationRequest describes one change to a faculty member's schedule.
type MutationRequest struct {
	Kind     MutationKind
	ActorID  int64 // пользователь, выполняющий действие
	EntityID int64 // встреча, занятие или активность; не нужен для создания
	Message  string
	NewStart time.Time           // новое время начала при переносе занятия
	Class    *model.ClassSession // для MutationCreateClass
	Activity *model.Activity     // для MutationCreateActivity и MutationUpdateActivity
}

type MutationResult struct {
	Entity   model.EntityRef
	Meeting  *model.MeetingRequest
	Class    *model.ClassSession
	Activity *model.Activity
}

// SchedulingService is the single entry point for availability queries and
// for every write that can change a faculty member's busy time.
type SchedulingService struct {
	repos    repository.Repositories
	txm      repository.TxManager
	settings Settings
	logger   *zap.Logger
}

func NewSchedulingService(repos repository.Repositories, txm repository.TxManager, settings Settings, logger *zap.Logger) *SchedulingService {
	return &SchedulingService{
		repos:    repos,
		txm:      txm,
		settings: settings.withDefaults(),
		logger:   logger,
	}
}

// GetAvailableSlots возвращает свободные слоты преподавателя заданной длительности
func (s *SchedulingService) GetAvailableSlots(ctx context.Context, facultyID int64, rng model.DateRange, durationMinutes int) ([]availability.Slot, error) {
	if err := model.ValidateMeetingDuration(durationMinutes); err != nil {
		return nil, err
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if rng.Len() > s.settings.MaxQueryDays {
		return nil, fmt.Errorf("%w: range %s longer than %d days", model.ErrInvalidInterval, rng, s.settings.MaxQueryDays)
	}

	if _, err := getFaculty(ctx, s.repos, facultyID); err != nil {
		return nil, err
	}

	tl, err := availability.NewTimelineBuilder(s.repos, s.settings.Location).Build(ctx, facultyID, rng)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	slots, err := availability.GenerateSlots(tl, availability.SlotOptions{
		Duration:    time.Duration(durationMinutes) * time.Minute,
		Step:        s.settings.SlotStep,
		WindowStart: s.settings.WorkdayStart,
		WindowEnd:   s.settings.WorkdayEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	// Прошедшие слоты не предлагаем
	now := s.settings.Now()
	upcoming := slots[:0]
	for _, slot := range slots {
		if !slot.Start.Before(now) {
			upcoming = append(upcoming, slot)
		}
	}

	return upcoming, nil
}

// ValidateAndCommit applies req under the faculty member's lock. Kinds that
// add busy time are checked against a timeline rebuilt inside the same
// transaction, so of two racing writes for overlapping time only the first
// commits and the second gets a *model.ConflictError naming it.
func (s *SchedulingService) ValidateAndCommit(ctx context.Context, req MutationRequest) (*MutationResult, error) {
	actor, err := getUser(ctx, s.repos, req.ActorID)
	if err != nil {
		return nil, err
	}

	facultyID, err := s.authorize(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	var result *MutationResult
	err = s.txm.WithFacultyLock(ctx, facultyID, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		switch {
		case meetingEvents[req.Kind] != "":
			result, err = s.commitMeeting(ctx, repos, req)
		case classEvents[req.Kind] != "":
			result, err = s.commitClass(ctx, repos, req)
		case req.Kind == MutationCreateClass:
			result, err = s.createClass(ctx, repos, actor, req)
		default:
			result, err = s.commitActivity(ctx, repos, actor, req)
		}
		return err
	})
	if err != nil {
		s.logRejected(req, facultyID, err)
		return nil, err
	}

	s.logger.Info("Schedule mutation committed",
		zap.String("kind", string(req.Kind)),
		zap.Stringer("entity", result.Entity),
		zap.Int64("faculty_id", facultyID),
		zap.Int64("actor_id", actor.ID),
	)

	return result, nil
}

func (s *SchedulingService) logRejected(req MutationRequest, facultyID int64, err error) {
	fields := []zap.Field{
		zap.String("kind", string(req.Kind)),
		zap.Int64("entity_id", req.EntityID),
		zap.Int64("faculty_id", facultyID),
		zap.Error(err),
	}

	var conflict *model.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Info("Schedule mutation rejected by conflict", append(fields, zap.Stringer("conflict_with", conflict.Entity))...)
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrInvalidInterval),
		errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrForbidden):
		s.logger.Warn("Schedule mutation rejected", fields...)
	default:
		s.logger.Error("Schedule mutation failed", fields...)
	}
}

// authorize checks that actor may perform req and returns the faculty member
// whose schedule it changes.
func (s *SchedulingService) authorize(ctx context.Context, actor *model.User, req MutationRequest) (int64, error) {
	forbidden := fmt.Errorf("%s by user %d: %w", req.Kind, actor.ID, model.ErrForbidden)

	switch req.Kind {
	case MutationApproveMeeting, MutationRejectMeeting, MutationCompleteMeeting, MutationCancelMeeting:
		m, err := s.getMeeting(ctx, s.repos, req.EntityID)
		if err != nil {
			return 0, err
		}
		// Отменить заявку может только студент, преподаватель её отклоняет
		owner := m.FacultyID
		if req.Kind == MutationCancelMeeting {
			owner = m.StudentID
		}
		if actor.ID != owner {
			return 0, forbidden
		}
		return m.FacultyID, nil

	case MutationCompleteClass, MutationCancelClass, MutationRescheduleClass:
		cs, err := s.getClass(ctx, s.repos, req.EntityID)
		if err != nil {
			return 0, err
		}
		if actor.ID != cs.FacultyID {
			return 0, forbidden
		}
		return cs.FacultyID, nil

	case MutationCreateClass:
		if req.Class == nil {
			return 0, fmt.Errorf("%s: class session is required", req.Kind)
		}
		if err := requireFacultyRole(actor); err != nil {
			return 0, err
		}
		return actor.ID, nil

	case MutationCreateActivity:
		if req.Activity == nil {
			return 0, fmt.Errorf("%s: activity is required", req.Kind)
		}
		if err := requireFacultyRole(actor); err != nil {
			return 0, err
		}
		return actor.ID, nil

	case MutationUpdateActivity, MutationDeleteActivity:
		if req.Kind == MutationUpdateActivity && req.Activity == nil {
			return 0, fmt.Errorf("%s: activity is required", req.Kind)
		}
		a, err := s.getActivity(ctx, s.repos, req.EntityID)
		if err != nil {
			return 0, err
		}
		if actor.ID != a.FacultyID {
			return 0, forbidden
		}
		return a.FacultyID, nil
	}

	return 0, fmt.Errorf("unknown mutation kind %q", req.Kind)
}

func (s *SchedulingService) commitMeeting(ctx context.Context, repos repository.Repositories, req MutationRequest) (*MutationResult, error) {
	m, err := s.getMeeting(ctx, repos, req.EntityID)
	if err != nil {
		return nil, err
	}

	prev := m.Status
	next, err := prev.Apply(meetingEvents[req.Kind])
	if err != nil {
		return nil, err
	}

	if next.OccupiesTime() && !prev.OccupiesTime() {
		ref := m.Ref()
		if err := s.settings.validator(repos).Validate(ctx, m.FacultyID, m.Interval(), &ref); err != nil {
			return nil, err
		}
	}

	m.Status = next
	if req.Message != "" {
		m.ResponseMessage = req.Message
	}
	if err := repos.Meetings.UpdateStatus(ctx, m, prev); err != nil {
		return nil, staleAsTransition(err)
	}

	if err := s.notifyMeeting(ctx, repos, m); err != nil {
		return nil, err
	}

	return &MutationResult{Entity: m.Ref(), Meeting: m}, nil
}

func (s *SchedulingService) notifyMeeting(ctx context.Context, repos repository.Repositories, m *model.MeetingRequest) error {
	when := s.settings.format(m.PreferredTime)
	payload := model.NotificationPayload{Entity: m.Ref(), UserIDs: []int64{m.StudentID}}

	var eventType model.EventType
	switch m.Status {
	case model.MeetingStatusApproved:
		eventType = model.EventMeetingApproved
		payload.Message = fmt.Sprintf("✅ Встреча %s подтверждена", when)
	case model.MeetingStatusRejected:
		eventType = model.EventMeetingRejected
		payload.Message = fmt.Sprintf("❌ Заявка на встречу %s отклонена", when)
	case model.MeetingStatusCancelled:
		eventType = model.EventMeetingCancelled
		payload.Message = fmt.Sprintf("🚫 Студент отменил заявку на встречу %s", when)
		payload.UserIDs = []int64{m.FacultyID}
	default:
		return nil
	}
	if m.ResponseMessage != "" {
		payload.Message += "\n💬 " + m.ResponseMessage
	}

	return emit(ctx, repos, eventType, payload)
}

func (s *SchedulingService) commitClass(ctx context.Context, repos repository.Repositories, req MutationRequest) (*MutationResult, error) {
	cs, err := s.getClass(ctx, repos, req.EntityID)
	if err != nil {
		return nil, err
	}

	prev := cs.Status
	next, err := prev.Apply(classEvents[req.Kind])
	if err != nil {
		return nil, err
	}

	payload := model.NotificationPayload{Entity: cs.Ref(), GroupID: groupRef(cs.GroupID)}
	var eventType model.EventType

	switch req.Kind {
	case MutationRescheduleClass:
		if req.NewStart.IsZero() {
			return nil, fmt.Errorf("%w: reschedule target is required", model.ErrInvalidInterval)
		}
		dest := model.TimeInterval{Start: req.NewStart, End: req.NewStart.Add(cs.Duration())}
		ref := cs.Ref()
		if err := s.settings.validator(repos).Validate(ctx, cs.FacultyID, dest, &ref); err != nil {
			return nil, err
		}
		target := req.NewStart
		cs.RescheduledTo = &target
		eventType = model.EventClassRescheduled
		payload.Message = fmt.Sprintf("🔁 Занятие «%s» перенесено с %s на %s", cs.Subject, s.settings.format(cs.StartTime), s.settings.format(target))
	case MutationCancelClass:
		eventType = model.EventClassCancelled
		payload.Message = fmt.Sprintf("🚫 Занятие «%s» %s отменено", cs.Subject, s.settings.format(cs.StartTime))
		if req.Message != "" {
			payload.Message += "\n💬 " + req.Message
		}
	}
	if req.Message != "" {
		cs.Notes = req.Message
	}

	cs.Status = next
	if err := repos.ClassSessions.UpdateStatus(ctx, cs, prev); err != nil {
		return nil, staleAsTransition(err)
	}

	if eventType != "" && payload.GroupID != nil {
		if err := emit(ctx, repos, eventType, payload); err != nil {
			return nil, err
		}
	}

	return &MutationResult{Entity: cs.Ref(), Class: cs}, nil
}

func (s *SchedulingService) createClass(ctx context.Context, repos repository.Repositories, actor *model.User, req MutationRequest) (*MutationResult, error) {
	cs := *req.Class
	cs.ID = 0
	cs.FacultyID = actor.ID
	cs.Status = model.ClassStatusScheduled
	cs.RescheduledTo = nil

	if cs.DurationHours < model.MinSlotHours || cs.DurationHours > model.MaxSlotHours {
		return nil, fmt.Errorf("%w: duration %dh outside %d..%d", model.ErrInvalidInterval, cs.DurationHours, model.MinSlotHours, model.MaxSlotHours)
	}

	// Занятие на месте шаблонного слота заменяет его в этот день
	var exclude *model.EntityRef
	if cs.WeeklySlotID != nil {
		slot, err := repos.WeeklySlots.GetByID(ctx, *cs.WeeklySlotID)
		if err != nil {
			return nil, fmt.Errorf("get weekly slot: %w", err)
		}
		if slot == nil || slot.FacultyID != actor.ID {
			return nil, model.NotFoundError(model.EntityWeeklySlot, *cs.WeeklySlotID)
		}
		exclude = &model.EntityRef{Type: model.EntityWeeklySlot, ID: slot.ID}
	}

	if err := s.settings.validator(repos).Validate(ctx, cs.FacultyID, cs.Interval(), exclude); err != nil {
		return nil, err
	}

	if err := repos.ClassSessions.Create(ctx, &cs); err != nil {
		return nil, err
	}

	if groupID := groupRef(cs.GroupID); groupID != nil {
		err := emit(ctx, repos, model.EventClassCreated, model.NotificationPayload{
			Entity:  cs.Ref(),
			GroupID: groupID,
			Message: fmt.Sprintf("🆕 Добавлено занятие «%s» %s", cs.Subject, s.settings.format(cs.StartTime)),
		})
		if err != nil {
			return nil, err
		}
	}

	return &MutationResult{Entity: cs.Ref(), Class: &cs}, nil
}

func (s *SchedulingService) commitActivity(ctx context.Context, repos repository.Repositories, actor *model.User, req MutationRequest) (*MutationResult, error) {
	validator := s.settings.validator(repos)

	switch req.Kind {
	case MutationCreateActivity:
		a := *req.Activity
		a.ID = 0
		a.FacultyID = actor.ID
		if err := validator.Validate(ctx, a.FacultyID, a.Interval(), nil); err != nil {
			return nil, err
		}
		if err := repos.Activities.Create(ctx, &a); err != nil {
			return nil, err
		}
		return &MutationResult{Entity: a.Ref(), Activity: &a}, nil

	case MutationUpdateActivity:
		a, err := s.getActivity(ctx, repos, req.EntityID)
		if err != nil {
			return nil, err
		}
		a.Title = req.Activity.Title
		a.ActivityType = req.Activity.ActivityType
		a.Description = req.Activity.Description
		a.StartTime = req.Activity.StartTime
		a.EndTime = req.Activity.EndTime

		ref := a.Ref()
		if err := validator.Validate(ctx, a.FacultyID, a.Interval(), &ref); err != nil {
			return nil, err
		}
		if err := repos.Activities.Update(ctx, a); err != nil {
			return nil, err
		}
		return &MutationResult{Entity: ref, Activity: a}, nil

	case MutationDeleteActivity:
		a, err := s.getActivity(ctx, repos, req.EntityID)
		if err != nil {
			return nil, err
		}
		if err := repos.Activities.Delete(ctx, a.ID); err != nil {
			return nil, err
		}
		return &MutationResult{Entity: a.Ref(), Activity: a}, nil
	}

	return nil, fmt.Errorf("unknown mutation kind %q", req.Kind)
}

func (s *SchedulingService) getMeeting(ctx context.Context, repos repository.Repositories, id int64) (*model.MeetingRequest, error) {
	m, err := repos.Meetings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting request: %w", err)
	}
	if m == nil {
		return nil, model.NotFoundError(model.EntityMeetingRequest, id)
	}
	return m, nil
}

func (s *SchedulingService) getClass(ctx context.Context, repos repository.Repositories, id int64) (*model.ClassSession, error) {
	cs, err := repos.ClassSessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get class session: %w", err)
	}
	if cs == nil {
		return nil, model.NotFoundError(model.EntityClassSession, id)
	}
	return cs, nil
}

func (s *SchedulingService) getActivity(ctx context.Context, repos repository.Repositories, id int64) (*model.Activity, error) {
	a, err := repos.Activities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if a == nil {
		return nil, model.NotFoundError(model.EntityActivity, id)
	}
	return a, nil
}
