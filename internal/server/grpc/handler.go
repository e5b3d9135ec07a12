package grpc

import (
	"context"

	"github.com/dmitrijs2005/draftkeeper/internal/api"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
)

func toAPIDocument(d *models.Document) *api.Document {
	return &api.Document{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Kind:      d.Kind,
		Payload:   d.Payload,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, req.Login, []byte(req.Password))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &api.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tok, err := s.users.Login(ctx, req.Login, []byte(req.Password))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.LoginResponse{AccessToken: tok.Token, ExpiresAt: tok.ExpiresAt}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateDocument(ctx context.Context, req *api.CreateDocumentRequest) (*api.CreateDocumentResponse, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.Create(ctx, owner, req.Kind, document.Payload(req.Payload), req.IdempotencyKey)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CreateDocumentResponse{Document: toAPIDocument(doc)}, nil
}

func (s *GRPCServer) UpdateDocument(ctx context.Context, req *api.UpdateDocumentRequest) (*api.UpdateDocumentResponse, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	updatedAt, err := s.documents.Update(ctx, owner, req.ID, document.Payload(req.Payload))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.UpdateDocumentResponse{UpdatedAt: updatedAt}, nil
}

func (s *GRPCServer) FetchDocument(ctx context.Context, req *api.FetchDocumentRequest) (*api.FetchDocumentResponse, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.Fetch(ctx, owner, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.FetchDocumentResponse{Document: toAPIDocument(doc)}, nil
}

func (s *GRPCServer) ListDocuments(ctx context.Context, req *api.ListDocumentsRequest) (*api.ListDocumentsResponse, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.List(ctx, owner, req.Kind)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]*api.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toAPIDocument(d))
	}
	return &api.ListDocumentsResponse{Documents: out}, nil
}
