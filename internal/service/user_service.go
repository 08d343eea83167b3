package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	// Проверяем существует ли пользователь
	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	// Если пользователь уже существует, обновляем данные
	if existingUser != nil {
		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName
		existingUser.LanguageCode = languageCode

		if err := s.userRepo.Update(ctx, existingUser); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		return existingUser, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
		Role:         model.RoleStudent, // По умолчанию студент
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.userRepo.GetByTelegramID(ctx, telegramID)
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListFaculty возвращает всех преподавателей, к которым можно записаться на встречу
func (s *UserService) ListFaculty(ctx context.Context) ([]*model.User, error) {
	faculty, err := s.userRepo.ListFaculty(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faculty: %w", err)
	}
	return faculty, nil
}

// MakeFaculty делает пользователя преподавателем
func (s *UserService) MakeFaculty(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		return model.NotFoundError("user", userID)
	}
	if user.Role != model.RoleStudent {
		return nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, model.RoleFaculty); err != nil {
		return fmt.Errorf("update user role: %w", err)
	}

	s.logger.Info("User became faculty",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return nil
}

// JoinGroup привязывает студента к учебной группе, чтобы он получал уведомления о занятиях
func (s *UserService) JoinGroup(ctx context.Context, userID int64, groupID uuid.UUID) error {
	if groupID == uuid.Nil {
		return fmt.Errorf("join group: empty group id")
	}

	if err := s.userRepo.UpdateGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("join group: %w", err)
	}

	s.logger.Info("User joined group",
		zap.Int64("user_id", userID),
		zap.Stringer("group_id", groupID),
	)

	return nil
}
