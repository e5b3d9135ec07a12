// Package documents stores documents in PostgreSQL. Every query is scoped
// by owner.
package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	Update(ctx context.Context, ownerID, id string, payload document.Payload) (time.Time, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Document, error)
	List(ctx context.Context, ownerID, kind string) ([]*models.Document, error)
}
