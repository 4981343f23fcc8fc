package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// MigrationServiceName is the fully qualified gRPC service name.
const MigrationServiceName = "cohort.v1.Migration"

// MigrationServer is the server side of the migration API. Requests and
// responses are free-form structs so the API needs no generated code.
type MigrationServer interface {
	Classify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Sample(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Rollback(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Violations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	EmergencyStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(MigrationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MigrationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + MigrationServiceName + "/" + method,
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MigrationServer), ctx, req.(*structpb.Struct))
		})
	}
}

// MigrationServiceDesc describes the migration API for grpc.Server registration.
var MigrationServiceDesc = grpc.ServiceDesc{
	ServiceName: MigrationServiceName,
	HandlerType: (*MigrationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: unaryHandler("Classify", MigrationServer.Classify)},
		{MethodName: "Sample", Handler: unaryHandler("Sample", MigrationServer.Sample)},
		{MethodName: "Execute", Handler: unaryHandler("Execute", MigrationServer.Execute)},
		{MethodName: "Rollback", Handler: unaryHandler("Rollback", MigrationServer.Rollback)},
		{MethodName: "History", Handler: unaryHandler("History", MigrationServer.History)},
		{MethodName: "Violations", Handler: unaryHandler("Violations", MigrationServer.Violations)},
		{MethodName: "EmergencyStatus", Handler: unaryHandler("EmergencyStatus", MigrationServer.EmergencyStatus)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterMigrationServer registers srv with s.
func RegisterMigrationServer(s grpc.ServiceRegistrar, srv MigrationServer) {
	s.RegisterService(&MigrationServiceDesc, srv)
}

// MigrationClient calls the migration API.
type MigrationClient struct {
	cc grpc.ClientConnInterface
}

// NewMigrationClient creates a client over cc.
func NewMigrationClient(cc grpc.ClientConnInterface) *MigrationClient {
	return &MigrationClient{cc: cc}
}

// Call invokes method with req and returns the response struct.
func (c *MigrationClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+MigrationServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
