package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/repository"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrPromptVersionNotFound is returned for an unknown saved version id.
var ErrPromptVersionNotFound = errors.New("prompt version not found")

type promptService struct {
	defaultPrompt string
	store         repository.KVStore
	tx            repository.KVTxRunner
	log           *zap.Logger
	observer      UseCaseObserver

	now   func() time.Time
	newID func() string

	mu       sync.RWMutex
	active   string
	versions []domain.PromptVersion
}

// NewPromptService creates a prompt service seeded with defaultPrompt.
// Call Load to restore saved state. tx may be nil, in which case multi-key
// writes run directly against store.
func NewPromptService(defaultPrompt string, store repository.KVStore, tx repository.KVTxRunner, log *zap.Logger, observers ...UseCaseObserver) PromptService {
	if tx == nil {
		tx = repository.DirectTx{Store: store}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &promptService{
		defaultPrompt: defaultPrompt,
		store:         store,
		tx:            tx,
		log:           log,
		observer:      useCaseObserverOrNoop(observers),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return ulid.Make().String() },
		active:        defaultPrompt,
	}
}

func (s *promptService) Load(ctx context.Context) {
	active := s.defaultPrompt
	if v, err := s.store.Get(ctx, repository.KeyActivePrompt); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("reading active prompt failed, using default", zap.Error(err))
		}
	} else if v != "" {
		active = v
	}

	var versions []domain.PromptVersion
	if raw, err := s.store.Get(ctx, repository.KeyPromptVersions); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("reading prompt versions failed, using none", zap.Error(err))
		}
	} else if err := json.Unmarshal([]byte(raw), &versions); err != nil {
		s.log.Debug("parsing prompt versions failed, using none", zap.Error(err))
		versions = nil
	}

	s.mu.Lock()
	s.active = active
	s.versions = versions
	s.mu.Unlock()
}

func (s *promptService) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *promptService) Default() string { return s.defaultPrompt }

func (s *promptService) ActiveVersionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].Content == s.active {
			return s.versions[i].ID
		}
	}
	return ""
}

func (s *promptService) Versions() []domain.PromptVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PromptVersion{}, s.versions...)
}

func (s *promptService) SetActive(ctx context.Context, text string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.set_active", start, err, nil) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, repository.KeyActivePrompt, text); err != nil {
		return fmt.Errorf("persisting active prompt: %w", err)
	}
	s.active = text
	return nil
}

func (s *promptService) SaveVersion(ctx context.Context, text string) (_ *domain.PromptVersion, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.save_version", start, err, nil) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.newVersion(text)
	next := append(append([]domain.PromptVersion{}, s.versions...), v)
	if err := putVersions(ctx, s.store, next); err != nil {
		return nil, err
	}
	s.versions = next
	return &v, nil
}

func (s *promptService) DeleteVersion(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.delete_version", start, err, map[string]any{"version_id": id}) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("deleting %s: %w", id, ErrPromptVersionNotFound)
	}
	removed := s.versions[idx]
	next := make([]domain.PromptVersion, 0, len(s.versions)-1)
	next = append(next, s.versions[:idx]...)
	next = append(next, s.versions[idx+1:]...)
	// The store keeps the active prompt as text, so a duplicate that survives
	// the delete still backs it.
	wasActive := removed.Content == s.active && !containsContent(next, s.active)

	err = s.tx.WithinTx(ctx, func(ctx context.Context, kv repository.KVStore) error {
		if err := putVersions(ctx, kv, next); err != nil {
			return err
		}
		if wasActive {
			if err := kv.Remove(ctx, repository.KeyActivePrompt); err != nil {
				return fmt.Errorf("clearing active prompt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.versions = next
	if wasActive {
		s.active = s.defaultPrompt
	}
	return nil
}

func (s *promptService) ActivateVersion(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.activate_version", start, err, map[string]any{"version_id": id}) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("activating %s: %w", id, ErrPromptVersionNotFound)
	}
	content := s.versions[idx].Content
	if err := s.store.Set(ctx, repository.KeyActivePrompt, content); err != nil {
		return fmt.Errorf("persisting active prompt: %w", err)
	}
	s.active = content
	return nil
}

func (s *promptService) ActivateDefault(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.activate_default", start, err, nil) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(ctx, repository.KeyActivePrompt); err != nil {
		return fmt.Errorf("clearing active prompt: %w", err)
	}
	s.active = s.defaultPrompt
	return nil
}

func (s *promptService) Save(ctx context.Context, edited, selectedID string) (outcome SaveOutcome, err error) {
	trimmed := strings.TrimSpace(edited)
	if trimmed == "" {
		return SaveIgnored, nil
	}
	if trimmed == strings.TrimSpace(s.defaultPrompt) {
		return SaveActivatedDefault, s.ActivateDefault(ctx)
	}

	s.mu.RLock()
	idx := s.indexOf(selectedID)
	matchesSelected := idx >= 0 && strings.TrimSpace(s.versions[idx].Content) == trimmed
	s.mu.RUnlock()
	if matchesSelected {
		return SaveActivatedExisting, s.ActivateVersion(ctx, selectedID)
	}

	start := time.Now()
	defer func() { observe(ctx, s.observer, "prompt.save", start, err, map[string]any{"outcome": outcome.String()}) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.newVersion(edited)
	next := append(append([]domain.PromptVersion{}, s.versions...), v)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, kv repository.KVStore) error {
		if err := putVersions(ctx, kv, next); err != nil {
			return err
		}
		if err := kv.Set(ctx, repository.KeyActivePrompt, edited); err != nil {
			return fmt.Errorf("persisting active prompt: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaveIgnored, err
	}

	s.versions = next
	s.active = edited
	return SaveCreated, nil
}

// indexOf must be called with mu held.
func (s *promptService) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, v := range s.versions {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (s *promptService) newVersion(text string) domain.PromptVersion {
	return domain.PromptVersion{ID: s.newID(), Content: text, CreatedAt: s.now()}
}

func putVersions(ctx context.Context, kv repository.KVStore, versions []domain.PromptVersion) error {
	data, err := json.Marshal(versions)
	if err != nil {
		return fmt.Errorf("marshaling prompt versions: %w", err)
	}
	if err := kv.Set(ctx, repository.KeyPromptVersions, string(data)); err != nil {
		return fmt.Errorf("persisting prompt versions: %w", err)
	}
	return nil
}

func containsContent(versions []domain.PromptVersion, content string) bool {
	for _, v := range versions {
		if v.Content == content {
			return true
		}
	}
	return false
}
