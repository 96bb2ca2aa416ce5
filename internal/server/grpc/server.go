// Package grpc serves the Library service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/paperswipe/internal/logging"
	"github.com/dmitrijs2005/paperswipe/internal/rpc"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/dmitrijs2005/paperswipe/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	Register(ctx context.Context, userName string, password []byte) (*models.User, error)
	Login(ctx context.Context, userName string, password []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type libraryService interface {
	Create(ctx context.Context, userID string, p *models.SavedPaper) (*models.SavedPaper, error)
	Update(ctx context.Context, userID, id string, patch models.PaperPatch) (*models.SavedPaper, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID, tag string) ([]*models.SavedPaper, error)
	Export(ctx context.Context, userID, format, tag string) (services.ExportLink, error)
}

type GRPCServer struct {
	address string
	users   userService
	library libraryService
	metrics *Metrics
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, us userService, ls libraryService, m *Metrics) *GRPCServer {
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		library: ls,
		metrics: m,
	}
}

// NewServer builds the grpc.Server with the metrics and auth interceptors
// and the Library service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{}
	if s.metrics != nil {
		interceptors = append(interceptors, s.metrics.UnaryInterceptor)
	}
	interceptors = append(interceptors, s.accessTokenInterceptor)

	srv := grpc.NewServer(append(opts, grpc.ChainUnaryInterceptor(interceptors...))...)
	rpc.RegisterLibraryServer(srv, s)
	return srv
}

// Run serves on the configured address until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
