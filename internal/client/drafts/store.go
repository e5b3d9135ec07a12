// Package drafts is the best-effort Local Draft Store.
//
// It wraps a drafts repository and never reports failures to callers:
// every error is logged and swallowed, because local drafts are a safety
// net rather than the primary data path. When the medium is full or
// unavailable the editor keeps working from memory and cloud sync.
package drafts

import (
	"context"
	"errors"
	"time"

	repo "github.com/dmitrijs2005/draftkeeper/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

type Store struct {
	repo   repo.Repository
	logger logging.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used to stamp SavedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(r repo.Repository, l logging.Logger, opts ...Option) *Store {
	s := &Store{repo: r, logger: l.With("module", "drafts"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save writes payload into the slot for key, replacing any previous draft,
// and returns the SavedAt stamp. The zero time means the save failed.
func (s *Store) Save(ctx context.Context, key document.Key, payload document.Payload) time.Time {
	return s.put(ctx, &document.Draft{Kind: key.Kind, RemoteID: key.RemoteID, Payload: payload.Clone()})
}

// SaveNew writes a draft of a never-created document together with the
// idempotency key of its pending create.
func (s *Store) SaveNew(ctx context.Context, kind string, payload document.Payload, createKey string) time.Time {
	return s.put(ctx, &document.Draft{Kind: kind, Payload: payload.Clone(), CreateKey: createKey})
}

func (s *Store) put(ctx context.Context, d *document.Draft) time.Time {
	d.SavedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, d); err != nil {
		s.logger.Warn(ctx, "local draft save failed", "key", d.Key().String(), "error", err)
		return time.Time{}
	}
	s.logger.Debug(ctx, "local draft saved", "key", d.Key().String())
	return d.SavedAt
}

// Load returns the draft for key, or false if there is none or it cannot
// be read.
func (s *Store) Load(ctx context.Context, key document.Key) (*document.Draft, bool) {
	d, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "local draft load failed", "key", key.String(), "error", err)
		}
		return nil, false
	}
	return d, true
}

// Clear removes the draft for key.
func (s *Store) Clear(ctx context.Context, key document.Key) {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "local draft clear failed", "key", key.String(), "error", err)
		return
	}
	s.logger.Debug(ctx, "local draft cleared", "key", key.String())
}

// HasRecoverable reports whether a draft of a never-created document of the
// given kind exists.
func (s *Store) HasRecoverable(ctx context.Context, kind string) bool {
	ok, err := s.repo.ExistsNew(ctx, kind)
	if err != nil {
		s.logger.Warn(ctx, "local draft lookup failed", "kind", kind, "error", err)
		return false
	}
	return ok
}

// List returns every stored draft, newest first.
func (s *Store) List(ctx context.Context) []document.Draft {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn(ctx, "local draft listing failed", "error", err)
		return nil
	}
	return list
}
