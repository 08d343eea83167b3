package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.User, error)
	ListFaculty(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	UpdateGroup(ctx context.Context, id int64, groupID uuid.UUID) error
}

type UserPostgresRepository struct {
	db Execer
}

func NewUserPostgresRepository(db Execer) *UserPostgresRepository {
	return &UserPostgresRepository{db: db}
}

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, role, group_id, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.Role,
		&user.GroupID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserPostgresRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, role, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
		user.Role,
		user.GroupID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserPostgresRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserPostgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

// GetByIDs получает пользователей по списку ID
func (r *UserPostgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	return r.list(ctx, "get users by ids", `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
}

// ListByGroup возвращает студентов учебной группы
func (r *UserPostgresRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*model.User, error) {
	return r.list(ctx, "list users by group", `SELECT `+userColumns+` FROM users WHERE group_id = $1 ORDER BY id`, groupID)
}

// ListFaculty возвращает всех преподавателей
func (r *UserPostgresRepository) ListFaculty(ctx context.Context) ([]*model.User, error) {
	return r.list(ctx, "list faculty", `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, model.RoleFaculty)
}

func (r *UserPostgresRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update обновляет профиль пользователя из Telegram
func (r *UserPostgresRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, language_code = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, user.Username, user.FirstName, user.LastName, user.LanguageCode, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError("user", user.ID)
	}

	return nil
}

// UpdateRole меняет роль пользователя
func (r *UserPostgresRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError("user", id)
	}

	return nil
}

// UpdateGroup привязывает студента к учебной группе
func (r *UserPostgresRepository) UpdateGroup(ctx context.Context, id int64, groupID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET group_id = $1 WHERE id = $2`, groupID, id)
	if err != nil {
		return fmt.Errorf("update user group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NotFoundError("user", id)
	}

	return nil
}
