package dto

import "time"

type StatusOutput struct {
	Authenticated bool
	UserID        string
	Email         string
	ExpiresAt     time.Time
}

type SignUpOutput struct {
	UserID              string
	ConfirmationPending bool
}
