package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/draftkeeper/internal/client/client"
	"github.com/dmitrijs2005/draftkeeper/internal/client/config"
	"github.com/dmitrijs2005/draftkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/draftkeeper/internal/client/drafts"
	repo "github.com/dmitrijs2005/draftkeeper/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/draftkeeper/internal/client/services"
	"github.com/dmitrijs2005/draftkeeper/internal/client/session"
	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

type sessionOpener interface {
	Open(ctx context.Context, kind, remoteID string, decide session.DecideFunc, opts session.OpenOptions) (*session.Session, error)
}

type draftLister interface {
	List(ctx context.Context) []document.Draft
}

type documentLister interface {
	List(ctx context.Context, kind string) ([]*document.Remote, error)
}

type onlineMonitor interface {
	Online() bool
	Subscribe(fn connectivity.Listener)
	Run(ctx context.Context)
}

type App struct {
	cfg     *config.Config
	auth    services.AuthService
	docs    documentLister
	opener  sessionOpener
	drafts  draftLister
	monitor onlineMonitor
	logger  logging.Logger

	scanner *bufio.Scanner
	out     io.Writer
	closers []io.Closer

	mu   sync.Mutex
	sess *session.Session
}

// NewApp wires local storage, the server client and the session manager.
func NewApp(ctx context.Context, cfg *config.Config, l logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DraftsDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(cfg.ServerAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := drafts.NewStore(repo.NewSQLiteRepository(db), l)
	manager := session.NewManager(store, apiClient, cfg.PreviewFields, session.Config{
		SnapshotInterval: cfg.SnapshotInterval,
		PushDelay:        cfg.PushDelay,
		PushTimeout:      cfg.RequestTimeout,
		Logger:           l,
	})

	return &App{
		cfg:     cfg,
		auth:    services.NewAuthService(apiClient),
		docs:    apiClient,
		opener:  manager,
		drafts:  store,
		monitor: connectivity.NewMonitor(apiClient, cfg.OnlineCheckInterval, l),
		logger:  l.With("module", "cli"),
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		closers: []io.Closer{db},
	}, nil
}

// Run starts the connectivity watcher and the REPL, and blocks until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to DraftKeeper (type 'help' for commands)")

	a.monitor.Subscribe(a.onConnectivity)
	go a.monitor.Run(ctx)

	if a.cfg.Login != "" {
		_ = a.Login(ctx, []string{a.cfg.Login})
	}

	runREPL(ctx, a, a.getStatus, a.scanner)
	a.Shutdown(ctx)
}

// Shutdown is the non-interactive exit path: the open document is saved
// locally when it needs to be, then everything is released.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	s := a.sess
	a.sess = nil
	a.mu.Unlock()

	if s != nil {
		res := s.Teardown(ctx)
		s.Stop()
		if res.Unsynced && res.Saved {
			printlnFn("Unsynced changes were kept as a local draft.")
		}
	}

	if err := a.auth.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing client", "error", err)
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentLogin() != ""
}

func (a *App) online() bool {
	return a.monitor.Online() && a.isLoggedIn()
}

func (a *App) current() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess
}

func (a *App) hasDocument() bool {
	return a.current() != nil
}

func (a *App) onConnectivity(online bool) {
	if s := a.current(); s != nil {
		s.SetOnline(context.Background(), online && a.isLoggedIn())
	}
}

func (a *App) getStatus() string {
	var parts []string
	if login := a.auth.CurrentLogin(); login != "" {
		parts = append(parts, login)
	}
	if s := a.current(); s != nil {
		v := s.View()
		parts = append(parts, docLabel(v.Kind, v.RemoteID), statusBadge(v.Status))
	} else if !a.monitor.Online() {
		parts = append(parts, statusBadge(syncstatus.Offline))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
