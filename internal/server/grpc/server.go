// Package grpc exposes the user and document services over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/draftkeeper/internal/api"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
	"github.com/dmitrijs2005/draftkeeper/internal/server/services"
)

type userSvc interface {
	Register(ctx context.Context, login string, password []byte) (*models.User, error)
	Login(ctx context.Context, login string, password []byte) (*services.AccessToken, error)
}

type documentSvc interface {
	Create(ctx context.Context, ownerID, kind string, payload document.Payload, idemKey string) (*models.Document, error)
	Update(ctx context.Context, ownerID, id string, payload document.Payload) (time.Time, error)
	Fetch(ctx context.Context, ownerID, id string) (*models.Document, error)
	List(ctx context.Context, ownerID, kind string) ([]*models.Document, error)
}

type GRPCServer struct {
	api.UnimplementedDraftKeeperServer
	address   string
	users     userSvc
	documents documentSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, ds documentSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		documents: ds,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a *grpc.Server with the interceptor chain and the
// DraftKeeper service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterDraftKeeperServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
