// Package api defines the DraftKeeper gRPC contract: message types, a JSON
// codec and a hand-written service descriptor shared by client and server.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "draftkeeper.v1.DraftKeeper"

// Full method names, as seen by interceptors.
const (
	MethodRegister       = "/" + ServiceName + "/Register"
	MethodLogin          = "/" + ServiceName + "/Login"
	MethodPing           = "/" + ServiceName + "/Ping"
	MethodCreateDocument = "/" + ServiceName + "/CreateDocument"
	MethodUpdateDocument = "/" + ServiceName + "/UpdateDocument"
	MethodFetchDocument  = "/" + ServiceName + "/FetchDocument"
	MethodListDocuments  = "/" + ServiceName + "/ListDocuments"
)

// PublicMethods do not require an access token.
var PublicMethods = map[string]bool{
	MethodRegister: true,
	MethodLogin:    true,
	MethodPing:     true,
}

type DraftKeeperServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	CreateDocument(context.Context, *CreateDocumentRequest) (*CreateDocumentResponse, error)
	UpdateDocument(context.Context, *UpdateDocumentRequest) (*UpdateDocumentResponse, error)
	FetchDocument(context.Context, *FetchDocumentRequest) (*FetchDocumentResponse, error)
	ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error)
}

// UnimplementedDraftKeeperServer can be embedded to satisfy
// DraftKeeperServer partially.
type UnimplementedDraftKeeperServer struct{}

func (UnimplementedDraftKeeperServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedDraftKeeperServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedDraftKeeperServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedDraftKeeperServer) CreateDocument(context.Context, *CreateDocumentRequest) (*CreateDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateDocument not implemented")
}
func (UnimplementedDraftKeeperServer) UpdateDocument(context.Context, *UpdateDocumentRequest) (*UpdateDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateDocument not implemented")
}
func (UnimplementedDraftKeeperServer) FetchDocument(context.Context, *FetchDocumentRequest) (*FetchDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchDocument not implemented")
}
func (UnimplementedDraftKeeperServer) ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDocuments not implemented")
}

func RegisterDraftKeeperServer(s grpc.ServiceRegistrar, srv DraftKeeperServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a method handler that decodes a *Req and dispatches to call,
// going through the server's interceptor chain.
func unary[Req any, Resp any](fullMethod string, call func(DraftKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DraftKeeperServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DraftKeeperServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, DraftKeeperServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, DraftKeeperServer.Login)},
		{MethodName: "Ping", Handler: unary(MethodPing, DraftKeeperServer.Ping)},
		{MethodName: "CreateDocument", Handler: unary(MethodCreateDocument, DraftKeeperServer.CreateDocument)},
		{MethodName: "UpdateDocument", Handler: unary(MethodUpdateDocument, DraftKeeperServer.UpdateDocument)},
		{MethodName: "FetchDocument", Handler: unary(MethodFetchDocument, DraftKeeperServer.FetchDocument)},
		{MethodName: "ListDocuments", Handler: unary(MethodListDocuments, DraftKeeperServer.ListDocuments)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "draftkeeper/v1/draftkeeper.json",
}

type DraftKeeperClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	CreateDocument(ctx context.Context, in *CreateDocumentRequest, opts ...grpc.CallOption) (*CreateDocumentResponse, error)
	UpdateDocument(ctx context.Context, in *UpdateDocumentRequest, opts ...grpc.CallOption) (*UpdateDocumentResponse, error)
	FetchDocument(ctx context.Context, in *FetchDocumentRequest, opts ...grpc.CallOption) (*FetchDocumentResponse, error)
	ListDocuments(ctx context.Context, in *ListDocumentsRequest, opts ...grpc.CallOption) (*ListDocumentsResponse, error)
}

type draftKeeperClient struct {
	cc grpc.ClientConnInterface
}

// NewDraftKeeperClient returns a client stub. Every call is sent with the
// JSON content subtype.
func NewDraftKeeperClient(cc grpc.ClientConnInterface) DraftKeeperClient {
	return &draftKeeperClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *draftKeeperClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *draftKeeperClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *draftKeeperClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *draftKeeperClient) CreateDocument(ctx context.Context, in *CreateDocumentRequest, opts ...grpc.CallOption) (*CreateDocumentResponse, error) {
	return invoke[CreateDocumentResponse](ctx, c.cc, MethodCreateDocument, in, opts)
}

func (c *draftKeeperClient) UpdateDocument(ctx context.Context, in *UpdateDocumentRequest, opts ...grpc.CallOption) (*UpdateDocumentResponse, error) {
	return invoke[UpdateDocumentResponse](ctx, c.cc, MethodUpdateDocument, in, opts)
}

func (c *draftKeeperClient) FetchDocument(ctx context.Context, in *FetchDocumentRequest, opts ...grpc.CallOption) (*FetchDocumentResponse, error) {
	return invoke[FetchDocumentResponse](ctx, c.cc, MethodFetchDocument, in, opts)
}

func (c *draftKeeperClient) ListDocuments(ctx context.Context, in *ListDocumentsRequest, opts ...grpc.CallOption) (*ListDocumentsResponse, error) {
	return invoke[ListDocumentsResponse](ctx, c.cc, MethodListDocuments, in, opts)
}
