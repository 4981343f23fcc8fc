package router

import (
	"context"
	"slices"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/cohort-migrator/internal/api/grpc/handler"
	"github.com/dtroode/cohort-migrator/internal/api/grpc/middleware"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// Router wires the migration API and its interceptors into a gRPC server.
type Router struct {
	migrations     handler.MigrationService
	rollback       handler.RollbackService
	violations     handler.ViolationLister
	emergency      handler.EmergencyState
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	migrations handler.MigrationService,
	rollback handler.RollbackService,
	violations handler.ViolationLister,
	emergency handler.EmergencyState,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		migrations:     migrations,
		rollback:       rollback,
		violations:     violations,
		emergency:      emergency,
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// requiresAuth exempts only the health service.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return c.Service != healthpb.Health_ServiceDesc.ServiceName
}

// Register builds the gRPC server with logging and operator authentication.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
			logging.HandleGRPC,
		),
		grpc.ChainStreamInterceptor(
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)

	handler.RegisterMigrationServer(s, handler.NewMigration(
		r.migrations,
		r.rollback,
		r.violations,
		r.emergency,
		r.contextManager,
		r.logger,
	))
	healthpb.RegisterHealthServer(s, health.NewServer())

	return s
}

// Methods lists the full method names s serves, such as
// "/cohort.v1.Migration/Execute", in sorted order.
func Methods(s *grpc.Server) []string {
	var out []string
	for name, info := range s.GetServiceInfo() {
		for _, m := range info.Methods {
			out = append(out, "/"+name+"/"+m.Name)
		}
	}
	slices.Sort(out)
	return out
}
