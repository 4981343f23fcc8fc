package router

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpccontext "github.com/dtroode/cohort-migrator/internal/api/grpc/context"
	"github.com/dtroode/cohort-migrator/internal/api/grpc/handler"
	"github.com/dtroode/cohort-migrator/internal/mocks"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/monitor"
	"github.com/dtroode/cohort-migrator/internal/service"
	"github.com/dtroode/cohort-migrator/internal/testutil"
)

type staticTokens map[string]string

func (s staticTokens) GetOperator(_ context.Context, token string) (string, error) {
	if op, ok := s[token]; ok {
		return op, nil
	}
	return "", errors.New("unknown token")
}

type classifyOnly struct{ actor string }

func (c *classifyOnly) Classify(_ context.Context, actor string) (model.Report, error) {
	c.actor = actor
	return model.Report{Mode: model.ModeClassify, Cohort: "2024-q1"}, nil
}

func (c *classifyOnly) Sample(context.Context, service.RunRequest) (model.Report, error) {
	return model.Report{}, model.ErrFeatureDisabled
}

func (c *classifyOnly) Execute(context.Context, service.RunRequest) (model.Report, error) {
	return model.Report{}, model.ErrFeatureDisabled
}

func (c *classifyOnly) History(context.Context, int) ([]model.AuditEntry, error) {
	return nil, nil
}

func dial(t *testing.T, s *grpc.Server) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRouter_Register(t *testing.T) {
	migrations := &classifyOnly{}
	r := New(migrations, nil, nil, nil, staticTokens{"tok": "alice"}, grpccontext.NewManager(), testutil.MakeNoopLogger())
	conn := dial(t, r.Register())
	client := handler.NewMigrationClient(conn)

	t.Run("rejects calls without token", func(t *testing.T) {
		_, err := client.Call(context.Background(), "Classify", nil)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("ignores a client supplied operator header", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "x-operator", "mallory")
		_, err := client.Call(ctx, "Classify", nil)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("runs as the token operator", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(),
			"authorization", "Bearer tok",
			"x-operator", "mallory",
		)
		out, err := client.Call(ctx, "Classify", &structpb.Struct{})
		require.NoError(t, err)
		assert.Equal(t, "alice", migrations.actor)
		assert.Equal(t, "2024-q1", out.GetFields()["cohort"].GetStringValue())
	})

	t.Run("maps service errors", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer tok")
		_, err := client.Call(ctx, "Execute", nil)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})

	t.Run("health needs no token", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}

var maintenanceDesc = grpc.ServiceDesc{
	ServiceName: "cohort.v1.Maintenance",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Wipe",
		Handler: func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
			return &structpb.Struct{}, nil
		},
	}},
}

func TestMethods(t *testing.T) {
	r := New(&classifyOnly{}, nil, nil, nil, staticTokens{}, grpccontext.NewManager(), testutil.MakeNoopLogger())
	methods := Methods(r.Register())

	assert.Contains(t, methods, "/cohort.v1.Migration/Execute")
	assert.Contains(t, methods, "/cohort.v1.Migration/Rollback")
	assert.Contains(t, methods, "/grpc.health.v1.Health/Check")
	assert.IsIncreasing(t, methods)
}

func TestMethods_ExtraServiceChangesRegistry(t *testing.T) {
	violations := mocks.NewViolationStore(t)
	violations.On("Append", mock.Anything, mock.MatchedBy(func(v model.SecurityViolation) bool {
		return v.Kind == model.ViolationRegistryChanged &&
			v.Operation == "registry:"+monitor.ScopeGRPC &&
			v.Detail == "added=[/cohort.v1.Maintenance/Wipe] removed=[]"
	})).Return(nil).Once()
	mon := monitor.New(violations, nil, testutil.MakeNoopLogger())

	r := New(&classifyOnly{}, nil, nil, nil, staticTokens{}, grpccontext.NewManager(), testutil.MakeNoopLogger())

	changed, err := mon.VerifyRegistry(context.Background(), monitor.ScopeGRPC, Methods(r.Register()))
	require.NoError(t, err)
	assert.False(t, changed)

	s := r.Register()
	s.RegisterService(&maintenanceDesc, struct{}{})

	changed, err = mon.VerifyRegistry(context.Background(), monitor.ScopeGRPC, Methods(s))
	require.NoError(t, err)
	assert.True(t, changed)
}
