package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/dbx"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
	"github.com/dmitrijs2005/draftkeeper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/draftkeeper/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	err    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byName[u.Login]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = fmt.Sprintf("u-%d", len(f.byName)+1)
	f.byName[u.Login] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeDocsRepo struct {
	mu        sync.Mutex
	docs      map[string]*models.Document
	creates   int
	createErr error
	now       time.Time
}

func newFakeDocsRepo() *fakeDocsRepo {
	return &fakeDocsRepo{docs: map[string]*models.Document{}, now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeDocsRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeDocsRepo) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.docs[d.ID]; ok {
		return nil, errors.New("duplicate key")
	}
	f.creates++
	d.CreatedAt = f.tick()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	f.docs[d.ID] = &cp
	return d, nil
}

func (f *fakeDocsRepo) Update(_ context.Context, ownerID, id string, p document.Payload) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.OwnerID != ownerID {
		return time.Time{}, common.ErrorNotFound
	}
	d.Payload = p.Clone()
	d.UpdatedAt = f.tick()
	return d.UpdatedAt, nil
}

func (f *fakeDocsRepo) GetByID(_ context.Context, ownerID, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocsRepo) List(_ context.Context, ownerID, kind string) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.docs {
		if d.OwnerID == ownerID && (kind == "" || d.Kind == kind) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	users *fakeUsersRepo
	docs  *fakeDocsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return m.docs }

type fakeArchive struct {
	mu   sync.Mutex
	puts []string
	err  error
}

func (a *fakeArchive) Put(_ context.Context, d *models.Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.puts = append(a.puts, d.ID)
	return a.err
}
