package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/dbx"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
	"github.com/dmitrijs2005/draftkeeper/internal/server/repositories/repomanager"
)

// IdempotencyStore binds create keys to the document they produced.
type IdempotencyStore interface {
	Reserve(ctx context.Context, ownerID, key, documentID string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, ownerID, key string) error
}

// Archive receives a copy of every stored revision.
type Archive interface {
	Put(ctx context.Context, doc *models.Document) error
}

// DocumentOption configures optional DocumentService backends.
type DocumentOption func(*DocumentService)

// WithIdempotency deduplicates creates that carry the same key for ttl.
func WithIdempotency(store IdempotencyStore, ttl time.Duration) DocumentOption {
	return func(s *DocumentService) {
		s.idem = store
		s.idemTTL = ttl
	}
}

// WithArchive archives every successful write.
func WithArchive(a Archive) DocumentOption {
	return func(s *DocumentService) { s.archive = a }
}

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	idem        IdempotencyStore
	idemTTL     time.Duration
	archive     Archive
	logger      logging.Logger
	newID       func() string
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "document_service"),
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create stores a new document for ownerID. A create that repeats an
// earlier idempotency key updates the document that key produced instead.
func (s *DocumentService) Create(ctx context.Context, ownerID, kind string, payload document.Payload, idemKey string) (*models.Document, error) {
	kind = strings.TrimSpace(kind)
	if ownerID == "" || kind == "" {
		return nil, common.ErrorInvalidArgument
	}

	id := s.newID()
	reserved := false
	if s.idem != nil && idemKey != "" {
		boundID, fresh, err := s.idem.Reserve(ctx, ownerID, idemKey, id, s.idemTTL)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "idempotency store unavailable, creating without deduplication", "error", err)
		case !fresh:
			s.logger.Info(ctx, "create replayed", "document_id", boundID)
			return s.replay(ctx, ownerID, boundID, kind, payload)
		default:
			reserved = true
		}
	}

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{
		ID:      id,
		OwnerID: ownerID,
		Kind:    kind,
		Payload: payload.Clone(),
	})
	if err != nil {
		if reserved {
			if rerr := s.idem.Release(ctx, ownerID, idemKey); rerr != nil {
				s.logger.Warn(ctx, "releasing idempotency key", "error", rerr)
			}
		}
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.archiveRevision(ctx, doc)
	return doc, nil
}

// replay applies a repeated create to the document the key is bound to.
// When the first attempt never got to insert, the document is created
// under the bound id.
func (s *DocumentService) replay(ctx context.Context, ownerID, id, kind string, payload document.Payload) (*models.Document, error) {
	var doc *models.Document
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)
		_, err := repo.Update(ctx, ownerID, id, payload)
		if errors.Is(err, common.ErrorNotFound) {
			doc, err = repo.Create(ctx, &models.Document{ID: id, OwnerID: ownerID, Kind: kind, Payload: payload.Clone()})
			return err
		}
		if err != nil {
			return err
		}
		doc, err = repo.GetByID(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error replaying create: %w", err)
	}

	s.archiveRevision(ctx, doc)
	return doc, nil
}

// Update replaces the payload of the owner's document.
func (s *DocumentService) Update(ctx context.Context, ownerID, id string, payload document.Payload) (time.Time, error) {
	if ownerID == "" || id == "" {
		return time.Time{}, common.ErrorInvalidArgument
	}

	updatedAt, err := s.repomanager.Documents(s.db).Update(ctx, ownerID, id, payload)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return time.Time{}, err
		}
		return time.Time{}, fmt.Errorf("error updating document: %w", err)
	}

	s.archiveRevision(ctx, &models.Document{ID: id, OwnerID: ownerID, Payload: payload, UpdatedAt: updatedAt})
	return updatedAt, nil
}

func (s *DocumentService) Fetch(ctx context.Context, ownerID, id string) (*models.Document, error) {
	if ownerID == "" || id == "" {
		return nil, common.ErrorInvalidArgument
	}
	return s.repomanager.Documents(s.db).GetByID(ctx, ownerID, id)
}

// List returns the owner's documents; an empty kind lists every kind.
func (s *DocumentService) List(ctx context.Context, ownerID, kind string) ([]*models.Document, error) {
	if ownerID == "" {
		return nil, common.ErrorInvalidArgument
	}
	return s.repomanager.Documents(s.db).List(ctx, ownerID, strings.TrimSpace(kind))
}

// archiveRevision is best effort: failures are logged, never returned.
func (s *DocumentService) archiveRevision(ctx context.Context, doc *models.Document) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(ctx, doc); err != nil {
		s.logger.Warn(ctx, "archiving revision failed", "document_id", doc.ID, "error", err)
	}
}
