package domain

import "time"

// PromptVersion is a user-saved variant of the evaluation prompt.
type PromptVersion struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
