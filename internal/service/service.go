package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/availability"
	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// Settings are the scheduling parameters shared by all services.
type Settings struct {
	Location     *time.Location
	SlotStep     time.Duration
	WorkdayStart time.Duration // offset from local midnight
	WorkdayEnd   time.Duration
	MaxQueryDays int
	Now          func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.SlotStep <= 0 {
		s.SlotStep = availability.DefaultStep
	}
	if s.WorkdayEnd <= s.WorkdayStart {
		s.WorkdayStart, s.WorkdayEnd = 9*time.Hour, 17*time.Hour
	}
	if s.MaxQueryDays <= 0 {
		s.MaxQueryDays = 31
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

const timeLayout = "02.01.2006 15:04"

func (s Settings) format(t time.Time) string {
	return t.In(s.Location).Format(timeLayout)
}

func (s Settings) validator(repos repository.Repositories) *availability.ConflictValidator {
	return availability.NewConflictValidator(availability.NewTimelineBuilder(repos, s.Location), s.Now)
}

func getUser(ctx context.Context, repos repository.Repositories, id int64) (*model.User, error) {
	user, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.NotFoundError("user", id)
	}
	return user, nil
}

func getFaculty(ctx context.Context, repos repository.Repositories, id int64) (*model.User, error) {
	user, err := getUser(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if !user.IsFaculty() {
		return nil, fmt.Errorf("user %d is not a faculty member: %w", id, model.ErrNotFound)
	}
	return user, nil
}

func requireFacultyRole(user *model.User) error {
	if !user.IsFaculty() {
		return fmt.Errorf("user %d is not a faculty member: %w", user.ID, model.ErrForbidden)
	}
	return nil
}

func requireAdmin(ctx context.Context, repos repository.Repositories, userID int64) error {
	user, err := getUser(ctx, repos, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return fmt.Errorf("user %d is not an admin: %w", userID, model.ErrForbidden)
	}
	return nil
}

func emit(ctx context.Context, repos repository.Repositories, eventType model.EventType, payload model.NotificationPayload) error {
	event, err := model.NewEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	if err := repos.Outbox.Insert(ctx, event); err != nil {
		return fmt.Errorf("insert %s event: %w", eventType, err)
	}
	return nil
}

func groupRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// staleAsTransition reports a lost compare-and-set as a transition failure:
// another writer already moved the entity out of the state we read.
func staleAsTransition(err error) error {
	if errors.Is(err, model.ErrStaleState) {
		return fmt.Errorf("%w: %w", model.ErrInvalidTransition, err)
	}
	return err
}
