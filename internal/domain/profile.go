package domain

import (
	"fmt"
	"time"
)

// Role - роль профиля
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole разбирает роль из хранилища.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Profile описывает профиль пользователя. ID совпадает с ID пользователя.
type Profile struct {
	ID        string
	Username  string
	Role      Role
	CreatedAt time.Time
}

// User описывает учётную запись для входа по email и паролю.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func NewUser(email, passwordHash string) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Identity - личность вызывающего, полученная из токена сессии.
type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}
