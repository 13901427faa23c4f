package domain

import "time"

// User is created on registration and only read afterwards.
type User struct {
	ID           string
	Login        string // unique
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	CreatedAt    time.Time
}
