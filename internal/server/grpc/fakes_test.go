package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/server/auth"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
	"github.com/dmitrijs2005/draftkeeper/internal/server/services"
)

const testSecret = "test-secret"

type fakeUsers struct {
	mu        sync.Mutex
	passwords map[string]string
	ids       map[string]string
	err       error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{passwords: map[string]string{}, ids: map[string]string{}}
}

func (f *fakeUsers) Register(_ context.Context, login string, password []byte) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.passwords[login]; ok {
		return nil, common.ErrorAlreadyExists
	}
	id := fmt.Sprintf("u-%d", len(f.ids)+1)
	f.passwords[login] = string(password)
	f.ids[login] = id
	return &models.User{ID: id, Login: login}, nil
}

func (f *fakeUsers) Login(_ context.Context, login string, password []byte) (*services.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.passwords[login]; !ok || p != string(password) {
		return nil, common.ErrorUnauthorized
	}
	tok, exp, err := auth.GenerateToken(f.ids[login], []byte(testSecret), time.Hour)
	if err != nil {
		return nil, err
	}
	return &services.AccessToken{Token: tok, ExpiresAt: exp}, nil
}

type fakeDocs struct {
	mu   sync.Mutex
	docs map[string]*models.Document
	keys map[string]string
	err  error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]*models.Document{}, keys: map[string]string{}}
}

func (f *fakeDocs) Create(_ context.Context, owner, kind string, p document.Payload, key string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.keys[owner+":"+key]; ok && key != "" {
		f.docs[id].Payload = p.Clone()
		cp := *f.docs[id]
		return &cp, nil
	}
	d := &models.Document{ID: fmt.Sprintf("d-%d", len(f.docs)+1), OwnerID: owner, Kind: kind, Payload: p.Clone(), UpdatedAt: time.Now()}
	f.docs[d.ID] = d
	if key != "" {
		f.keys[owner+":"+key] = d.ID
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocs) Update(_ context.Context, owner, id string, p document.Payload) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, f.err
	}
	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return time.Time{}, common.ErrorNotFound
	}
	d.Payload = p.Clone()
	d.UpdatedAt = time.Now()
	return d.UpdatedAt, nil
}

func (f *fakeDocs) Fetch(_ context.Context, owner, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocs) List(_ context.Context, owner, kind string) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Document
	for _, d := range f.docs {
		if d.OwnerID == owner && (kind == "" || d.Kind == kind) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestServer() *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), newFakeUsers(), newFakeDocs(), testSecret)
}
