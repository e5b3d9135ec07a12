package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/draftkeeper/internal/api"
	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

/*************
 * Fake server
 *************/

type fakeServer struct {
	api.UnimplementedDraftKeeperServer

	mu         sync.Mutex
	validToken string
	logins     int
	tokens     []string
	pingStatus string
	createReq  *api.CreateDocumentRequest
	updateErr  error
	docs       map[string]*api.Document
}

func newFakeServer() *fakeServer {
	return &fakeServer{validToken: "T1", pingStatus: "OK", docs: map[string]*api.Document{}}
}

func (f *fakeServer) authorize(ctx context.Context) error {
	md, _ := metadata.FromIncomingContext(ctx)
	tok := ""
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		tok = v[0]
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, tok)
	if tok != f.validToken {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}
	return nil
}

func (f *fakeServer) Register(_ context.Context, in *api.RegisterRequest) (*api.RegisterResponse, error) {
	if in.Login == "taken" {
		return nil, status.Error(codes.AlreadyExists, "login taken")
	}
	return &api.RegisterResponse{UserID: "u-1"}, nil
}

func (f *fakeServer) Login(_ context.Context, in *api.LoginRequest) (*api.LoginResponse, error) {
	if in.Password != "secret" {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return &api.LoginResponse{AccessToken: f.validToken}, nil
}

func (f *fakeServer) Ping(context.Context, *api.PingRequest) (*api.PingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.PingResponse{Status: f.pingStatus}, nil
}

func (f *fakeServer) CreateDocument(ctx context.Context, in *api.CreateDocumentRequest) (*api.CreateDocumentResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReq = in
	d := &api.Document{ID: "d-1", OwnerID: "u-1", Kind: in.Kind, Payload: in.Payload, UpdatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f.docs[d.ID] = d
	return &api.CreateDocumentResponse{Document: d}, nil
}

func (f *fakeServer) UpdateDocument(ctx context.Context, in *api.UpdateDocumentRequest) (*api.UpdateDocumentResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &api.UpdateDocumentResponse{UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeServer) FetchDocument(ctx context.Context, in *api.FetchDocumentRequest) (*api.FetchDocumentResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &api.FetchDocumentResponse{Document: d}, nil
}

func (f *fakeServer) ListDocuments(ctx context.Context, in *api.ListDocumentsRequest) (*api.ListDocumentsResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.Document
	for _, d := range f.docs {
		if in.Kind == "" || d.Kind == in.Kind {
			out = append(out, d)
		}
	}
	return &api.ListDocumentsResponse{Documents: out}, nil
}

func newTestClient(t *testing.T, srv api.DraftKeeperServer) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	api.RegisterDraftKeeperServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

/*************
 * Tests
 *************/

func TestGRPCClient_CreateFetchUpdate(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "ann", "secret"))

	created, err := c.Create(ctx, "report", document.Payload{"clientName": "Ann"}, "idem-1")
	require.NoError(t, err)
	assert.Equal(t, "d-1", created.ID)
	assert.Equal(t, "report", created.Kind)
	assert.Equal(t, document.Payload{"clientName": "Ann"}, created.Payload)
	assert.Equal(t, "idem-1", srv.createReq.IdempotencyKey)

	got, err := c.Fetch(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.OwnerID)

	updatedAt, err := c.Update(ctx, "d-1", document.Payload{"clientName": "Bob"})
	require.NoError(t, err)
	assert.True(t, updatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	list, err := c.List(ctx, "report")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = c.Fetch(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGRPCClient_ReloginOnceWhenTokenRejected(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "ann", "secret"))
	srv.mu.Lock()
	srv.validToken = "T2"
	srv.mu.Unlock()

	_, err := c.Fetch(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, 2, srv.logins)
	assert.Equal(t, []string{"T1", "T2"}, srv.tokens)
	assert.Equal(t, "T2", c.token())
}

func TestGRPCClient_NoReloginWithoutCredentials(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), "d-1")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, srv.logins)
}

func TestGRPCClient_RegisterAndLoginErrors(t *testing.T) {
	c := newTestClient(t, newFakeServer())
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "ann", "secret"))
	require.ErrorIs(t, c.Register(ctx, "taken", "secret"), ErrAlreadyExists)
	require.ErrorIs(t, c.Login(ctx, "ann", "wrong"), ErrUnauthorized)

	login, _ := c.credentials()
	assert.Empty(t, login, "failed login must not remember credentials")
}

func TestGRPCClient_Ping(t *testing.T) {
	srv := newFakeServer()
	c := newTestClient(t, srv)

	require.NoError(t, c.Ping(context.Background()))

	srv.mu.Lock()
	srv.pingStatus = "DEGRADED"
	srv.mu.Unlock()
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestGRPCClient_UpdateInternalErrorIsWrapped(t *testing.T) {
	srv := newFakeServer()
	srv.updateErr = status.Error(codes.Internal, "boom")
	c := newTestClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ann", "secret"))

	_, err := c.Update(ctx, "d-1", document.Payload{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	tests := []struct {
		in   error
		want error
	}{
		{status.Error(codes.Unavailable, "x"), ErrUnavailable},
		{status.Error(codes.DeadlineExceeded, "x"), ErrUnavailable},
		{status.Error(codes.Unauthenticated, "x"), ErrUnauthorized},
		{status.Error(codes.PermissionDenied, "x"), ErrUnauthorized},
		{status.Error(codes.NotFound, "x"), common.ErrorNotFound},
		{status.Error(codes.AlreadyExists, "x"), ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(status.Code(tt.in).String(), func(t *testing.T) {
			require.ErrorIs(t, c.mapError(tt.in), tt.want)
		})
	}
	assert.NoError(t, c.mapError(nil))
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.NewOutgoingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "old", "x", "y"))
	ctx = withAccessToken(ctx, "new")

	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"y"}, md.Get("x"))
}
