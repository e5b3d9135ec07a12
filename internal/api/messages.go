package api

import "time"

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Document is the wire form of an owner-scoped remote document.
type Document struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CreateDocumentRequest struct {
	Kind           string         `json:"kind"`
	Payload        map[string]any `json:"payload"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

type CreateDocumentResponse struct {
	Document *Document `json:"document"`
}

type UpdateDocumentRequest struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

type UpdateDocumentResponse struct {
	UpdatedAt time.Time `json:"updated_at"`
}

type FetchDocumentRequest struct {
	ID string `json:"id"`
}

type FetchDocumentResponse struct {
	Document *Document `json:"document"`
}

type ListDocumentsRequest struct {
	Kind string `json:"kind,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
}
