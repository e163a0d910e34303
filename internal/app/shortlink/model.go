package shortlink

import "time"

type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Link struct {
	ID        string
	URL       string
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
