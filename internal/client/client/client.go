package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

// Client is the remote document store as seen by the editor.
type Client interface {
	Close() error
	Register(ctx context.Context, login, password string) error
	Login(ctx context.Context, login, password string) error
	Ping(ctx context.Context) error
	Create(ctx context.Context, kind string, payload document.Payload, idempotencyKey string) (*document.Remote, error)
	Update(ctx context.Context, id string, payload document.Payload) (time.Time, error)
	Fetch(ctx context.Context, id string) (*document.Remote, error)
	List(ctx context.Context, kind string) ([]*document.Remote, error)
}
