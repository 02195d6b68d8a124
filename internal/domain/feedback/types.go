// Package feedback holds the user feedback domain type.
package feedback

import "time"

// Feedback is a user-submitted message, persisted and relayed by mail.
type Feedback struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
