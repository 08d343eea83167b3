package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// HolidayService manages the institution-wide holiday calendar. Only admins may change it.
type HolidayService struct {
	repos  repository.Repositories
	logger *zap.Logger
}

func NewHolidayService(repos repository.Repositories, logger *zap.Logger) *HolidayService {
	return &HolidayService{
		repos:  repos,
		logger: logger,
	}
}

func (s *HolidayService) Create(ctx context.Context, adminID int64, holiday *model.Holiday) (*model.Holiday, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if holiday.Date.IsZero() {
		return nil, fmt.Errorf("%w: holiday date is required", model.ErrInvalidInterval)
	}

	if err := s.repos.Holidays.Create(ctx, holiday); err != nil {
		return nil, err
	}

	s.logger.Info("Holiday created",
		zap.Int64("holiday_id", holiday.ID),
		zap.Stringer("date", holiday.Date),
		zap.Bool("recurring", holiday.IsRecurring),
	)

	return holiday, nil
}

func (s *HolidayService) Delete(ctx context.Context, adminID, holidayID int64) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	if err := s.repos.Holidays.Delete(ctx, holidayID); err != nil {
		return err
	}

	s.logger.Info("Holiday deleted", zap.Int64("holiday_id", holidayID))
	return nil
}

func (s *HolidayService) List(ctx context.Context) ([]*model.Holiday, error) {
	return s.repos.Holidays.List(ctx)
}

func (s *HolidayService) requireAdmin(ctx context.Context, userID int64) error {
	return requireAdmin(ctx, s.repos, userID)
}
