package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           int64      `json:"id"`
	TelegramID   int64      `json:"telegram_id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	LanguageCode string     `json:"language_code"`
	Role         Role       `json:"role"`
	GroupID      *uuid.UUID `json:"group_id"` // учебная группа студента
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) IsFaculty() bool {
	return u.Role == RoleFaculty
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the name shown in messages.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
