// Package rpc describes the Library gRPC service shared by the CLI and the
// server. Messages travel as google.protobuf.Struct; the mapping between
// those and Go types lives in this package only.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "paperswipe.v1.Library"

const (
	MethodRegister     = "Register"
	MethodLogin        = "Login"
	MethodRefreshToken = "RefreshToken"
	MethodPing         = "Ping"
	MethodCreatePaper  = "CreatePaper"
	MethodUpdatePaper  = "UpdatePaper"
	MethodDeletePaper  = "DeletePaper"
	MethodListPapers   = "ListPapers"
	MethodExportPapers = "ExportPapers"
)

// FullMethod returns the gRPC method path, e.g. "/paperswipe.v1.Library/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods do not require an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodRegister):     true,
	FullMethod(MethodLogin):        true,
	FullMethod(MethodRefreshToken): true,
	FullMethod(MethodPing):         true,
}

// LibraryServer is implemented by the server.
type LibraryServer interface {
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreatePaper(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	UpdatePaper(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeletePaper(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListPapers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ExportPapers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type serverMethod func(srv LibraryServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func handler(method string, call serverMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LibraryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(LibraryServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc of the Library service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LibraryServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(MethodRegister, LibraryServer.Register),
		handler(MethodLogin, LibraryServer.Login),
		handler(MethodRefreshToken, LibraryServer.RefreshToken),
		handler(MethodPing, LibraryServer.Ping),
		handler(MethodCreatePaper, LibraryServer.CreatePaper),
		handler(MethodUpdatePaper, LibraryServer.UpdatePaper),
		handler(MethodDeletePaper, LibraryServer.DeletePaper),
		handler(MethodListPapers, LibraryServer.ListPapers),
		handler(MethodExportPapers, LibraryServer.ExportPapers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paperswipe/v1/library",
}

func RegisterLibraryServer(s grpc.ServiceRegistrar, srv LibraryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// LibraryClient calls the Library service.
type LibraryClient interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type libraryClient struct {
	cc grpc.ClientConnInterface
}

func NewLibraryClient(cc grpc.ClientConnInterface) LibraryClient {
	return &libraryClient{cc: cc}
}

func (c *libraryClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
