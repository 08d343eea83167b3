package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

type ActivityService struct {
	repos      repository.Repositories
	scheduling *SchedulingService
	settings   Settings
	logger     *zap.Logger
}

func NewActivityService(repos repository.Repositories, scheduling *SchedulingService, settings Settings, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		repos:      repos,
		scheduling: scheduling,
		settings:   settings.withDefaults(),
		logger:     logger,
	}
}

// Create добавляет активность преподавателя, если время свободно
func (s *ActivityService) Create(ctx context.Context, facultyID int64, activity *model.Activity) (*model.Activity, error) {
	result, err := s.scheduling.ValidateAndCommit(ctx, MutationRequest{
		Kind:     MutationCreateActivity,
		ActorID:  facultyID,
		Activity: activity,
	})
	if err != nil {
		return nil, err
	}
	return result.Activity, nil
}

// Update меняет активность; её собственное прежнее время конфликтом не считается
func (s *ActivityService) Update(ctx context.Context, facultyID int64, activity *model.Activity) (*model.Activity, error) {
	result, err := s.scheduling.ValidateAndCommit(ctx, MutationRequest{
		Kind:     MutationUpdateActivity,
		ActorID:  facultyID,
		EntityID: activity.ID,
		Activity: activity,
	})
	if err != nil {
		return nil, err
	}
	return result.Activity, nil
}

func (s *ActivityService) Delete(ctx context.Context, facultyID, activityID int64) error {
	_, err := s.scheduling.ValidateAndCommit(ctx, MutationRequest{
		Kind:     MutationDeleteActivity,
		ActorID:  facultyID,
		EntityID: activityID,
	})
	return err
}

func (s *ActivityService) List(ctx context.Context, facultyID int64, rng model.DateRange) ([]*model.Activity, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	from, to := rng.Bounds(s.settings.Location)
	return s.repos.Activities.ListByFaculty(ctx, facultyID, from, to)
}
