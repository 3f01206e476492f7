package models

import "time"

type Session struct {
	ID          string
	UserID      int64
	Username    string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
