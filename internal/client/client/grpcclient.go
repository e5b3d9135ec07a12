package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/draftkeeper/internal/api"
	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.DraftKeeperClient

	mu          sync.Mutex
	accessToken string
	login       string
	password    string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *GRPCClient) credentials() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login, s.password
}

// accessTokenInterceptor attaches the current token. When the server
// rejects it and credentials are known, it logs in once more and retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if api.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	login, password := s.credentials()
	if login == "" {
		return err
	}
	if lerr := s.Login(ctx, login, password); lerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}
	conn, err := grpc.NewClient(s.endpointURL, append(opts, extra...)...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewDraftKeeperClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, login, password string) error {
	_, err := s.client.Register(ctx, &api.RegisterRequest{Login: login, Password: password})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

// Login authenticates and remembers the credentials for transparent
// re-login when the token expires.
func (s *GRPCClient) Login(ctx context.Context, login, password string) error {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Login: login, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.login = login
	s.password = password
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Create(ctx context.Context, kind string, payload document.Payload, idempotencyKey string) (*document.Remote, error) {
	req := &api.CreateDocumentRequest{Kind: kind, Payload: payload, IdempotencyKey: idempotencyKey}

	resp, err := s.client.CreateDocument(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Document == nil {
		return nil, errors.New("empty create response")
	}
	return toRemote(resp.Document), nil
}

func (s *GRPCClient) Update(ctx context.Context, id string, payload document.Payload) (time.Time, error) {
	resp, err := s.client.UpdateDocument(ctx, &api.UpdateDocumentRequest{ID: id, Payload: payload})
	if err != nil {
		return time.Time{}, s.mapError(err)
	}
	return resp.UpdatedAt, nil
}

func (s *GRPCClient) Fetch(ctx context.Context, id string) (*document.Remote, error) {
	resp, err := s.client.FetchDocument(ctx, &api.FetchDocumentRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Document == nil {
		return nil, common.ErrorNotFound
	}
	return toRemote(resp.Document), nil
}

func (s *GRPCClient) List(ctx context.Context, kind string) ([]*document.Remote, error) {
	resp, err := s.client.ListDocuments(ctx, &api.ListDocumentsRequest{Kind: kind})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*document.Remote, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		out = append(out, toRemote(d))
	}
	return out, nil
}

func toRemote(d *api.Document) *document.Remote {
	p := document.Payload(d.Payload)
	if p == nil {
		p = document.Payload{}
	}
	return &document.Remote{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Kind:      d.Kind,
		Payload:   p,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
