package drafts

import (
	"context"

	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

type Repository interface {
	Upsert(ctx context.Context, d *document.Draft) error
	// Get returns common.ErrorNotFound when the slot is empty.
	Get(ctx context.Context, key document.Key) (*document.Draft, error)
	Delete(ctx context.Context, key document.Key) error
	ExistsNew(ctx context.Context, kind string) (bool, error)
	// List returns all drafts, most recently saved first.
	List(ctx context.Context) ([]document.Draft, error)
}
