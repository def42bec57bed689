package models

import "time"

// Notification is a message addressed to one user.
type Notification struct {
	ID          string    `db:"id" json:"id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Message     string    `db:"message" json:"message"`
	Detail      string    `db:"detail" json:"detail"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
