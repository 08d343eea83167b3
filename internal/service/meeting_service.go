package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// MeetingService handles student meeting requests and the faculty responses to them.
type MeetingService struct {
	repos      repository.Repositories
	txm        repository.TxManager
	scheduling *SchedulingService
	settings   Settings
	logger     *zap.Logger
}

func NewMeetingService(repos repository.Repositories, txm repository.TxManager, scheduling *SchedulingService, settings Settings, logger *zap.Logger) *MeetingService {
	return &MeetingService{
		repos:      repos,
		txm:        txm,
		scheduling: scheduling,
		settings:   settings.withDefaults(),
		logger:     logger,
	}
}

// RequestMeeting создаёт заявку студента на встречу с преподавателем.
// Занятое время отклоняется сразу, окончательная проверка происходит при подтверждении.
func (s *MeetingService) RequestMeeting(ctx context.Context, studentID, facultyID int64, start time.Time, durationMinutes int, purpose string) (*model.MeetingRequest, error) {
	if err := model.ValidateMeetingDuration(durationMinutes); err != nil {
		return nil, err
	}
	if studentID == facultyID {
		return nil, fmt.Errorf("meeting with yourself: %w", model.ErrForbidden)
	}

	meeting := &model.MeetingRequest{
		FacultyID:       facultyID,
		StudentID:       studentID,
		PreferredTime:   start,
		DurationMinutes: durationMinutes,
		Purpose:         purpose,
		Status:          model.MeetingStatusPending,
	}

	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		student, err := getUser(ctx, repos, studentID)
		if err != nil {
			return err
		}
		if _, err := getFaculty(ctx, repos, facultyID); err != nil {
			return err
		}

		if err := s.settings.validator(repos).Validate(ctx, facultyID, meeting.Interval(), nil); err != nil {
			return err
		}

		if err := repos.Meetings.Create(ctx, meeting); err != nil {
			return err
		}

		message := fmt.Sprintf("📩 Новая заявка на встречу от %s\n🕐 %s, %d мин.", student.DisplayName(), s.settings.format(start), durationMinutes)
		if purpose != "" {
			message += "\n📝 " + purpose
		}
		return emit(ctx, repos, model.EventMeetingRequested, model.NotificationPayload{
			Entity:  meeting.Ref(),
			UserIDs: []int64{facultyID},
			Message: message,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("request meeting: %w", err)
	}

	s.logger.Info("Meeting requested",
		zap.Int64("meeting_id", meeting.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("faculty_id", facultyID),
		zap.Time("preferred_time", start),
	)

	return meeting, nil
}

// Approve подтверждает заявку, если время всё ещё свободно
func (s *MeetingService) Approve(ctx context.Context, facultyID, meetingID int64, message string) (*model.MeetingRequest, error) {
	return s.mutate(ctx, MutationApproveMeeting, facultyID, meetingID, message)
}

// Reject отклоняет заявку
func (s *MeetingService) Reject(ctx context.Context, facultyID, meetingID int64, message string) (*model.MeetingRequest, error) {
	return s.mutate(ctx, MutationRejectMeeting, facultyID, meetingID, message)
}

// Complete отмечает подтверждённую встречу как состоявшуюся
func (s *MeetingService) Complete(ctx context.Context, facultyID, meetingID int64) (*model.MeetingRequest, error) {
	return s.mutate(ctx, MutationCompleteMeeting, facultyID, meetingID, "")
}

// Cancel отменяет ожидающую заявку по инициативе студента
func (s *MeetingService) Cancel(ctx context.Context, studentID, meetingID int64) (*model.MeetingRequest, error) {
	return s.mutate(ctx, MutationCancelMeeting, studentID, meetingID, "")
}

func (s *MeetingService) mutate(ctx context.Context, kind MutationKind, actorID, meetingID int64, message string) (*model.MeetingRequest, error) {
	result, err := s.scheduling.ValidateAndCommit(ctx, MutationRequest{
		Kind:     kind,
		ActorID:  actorID,
		EntityID: meetingID,
		Message:  message,
	})
	if err != nil {
		return nil, err
	}
	return result.Meeting, nil
}

// ListForFaculty возвращает заявки преподавателю; без статусов возвращает все
func (s *MeetingService) ListForFaculty(ctx context.Context, facultyID int64, statuses ...model.MeetingStatus) ([]*model.MeetingRequest, error) {
	return s.repos.Meetings.ListByFaculty(ctx, facultyID, statuses...)
}

// ListForStudent возвращает заявки студента
func (s *MeetingService) ListForStudent(ctx context.Context, studentID int64) ([]*model.MeetingRequest, error) {
	return s.repos.Meetings.ListByStudent(ctx, studentID)
}
