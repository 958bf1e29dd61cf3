package service

import (
	"context"

	"github.com/alexanderramin/pursuit/internal/domain"
)

// PromptService owns the prompt text sent with every concept request.
type PromptService interface {
	// Load restores the active prompt and saved versions from the store.
	// Missing or unreadable entries leave the defaults in place.
	Load(ctx context.Context)
	Active() string
	Default() string
	// ActiveVersionID returns the id of the saved version whose content is
	// the active prompt, or "" when the active prompt is not a saved version.
	ActiveVersionID() string
	Versions() []domain.PromptVersion

	SetActive(ctx context.Context, text string) error
	// SaveVersion appends a new version without activating it.
	SaveVersion(ctx context.Context, text string) (*domain.PromptVersion, error)
	DeleteVersion(ctx context.Context, id string) error
	ActivateVersion(ctx context.Context, id string) error
	ActivateDefault(ctx context.Context) error
	// Save is the editor flow: it repoints the active prompt when edited
	// matches the default or the selected version, and otherwise saves and
	// activates a new version.
	Save(ctx context.Context, edited, selectedID string) (SaveOutcome, error)
}

// SaveOutcome reports what Save did.
type SaveOutcome int

const (
	SaveIgnored SaveOutcome = iota
	SaveActivatedDefault
	SaveActivatedExisting
	SaveCreated
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveActivatedDefault:
		return "activated default"
	case SaveActivatedExisting:
		return "activated existing version"
	case SaveCreated:
		return "saved new version"
	default:
		return "ignored"
	}
}
