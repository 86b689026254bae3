package enginepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Fully qualified method names of vector_service.VectorService.
const (
	VectorService_Upsert_FullMethodName = "/vector_service.VectorService/Upsert"
	VectorService_Query_FullMethodName  = "/vector_service.VectorService/Query"
)

// VectorServiceClient is the client API for VectorService.
type VectorServiceClient interface {
	Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error)
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
}

type vectorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVectorServiceClient returns a client that encodes every call with Codec.
func NewVectorServiceClient(cc grpc.ClientConnInterface) VectorServiceClient {
	return &vectorServiceClient{cc: cc}
}

func (c *vectorServiceClient) Upsert(
	ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption,
) (*UpsertResponse, error) {
	out := new(UpsertResponse)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := c.cc.Invoke(ctx, VectorService_Upsert_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Query(
	ctx context.Context, in *QueryRequest, opts ...grpc.CallOption,
) (*QueryResponse, error) {
	out := new(QueryResponse)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := c.cc.Invoke(ctx, VectorService_Query_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VectorServiceServer is the server API for VectorService. The gateway never
// serves it; it exists for in-process test engines. Servers must be created
// with grpc.ForceServerCodec(Codec{}).
type VectorServiceServer interface {
	Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
}

// UnimplementedVectorServiceServer answers every method with codes.Unimplemented.
type UnimplementedVectorServiceServer struct{}

// Upsert is not implemented.
func (UnimplementedVectorServiceServer) Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Upsert not implemented")
}

// Query is not implemented.
func (UnimplementedVectorServiceServer) Query(context.Context, *QueryRequest) (*QueryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Query not implemented")
}

// RegisterVectorServiceServer registers srv on s.
func RegisterVectorServiceServer(s grpc.ServiceRegistrar, srv VectorServiceServer) {
	s.RegisterService(&VectorService_ServiceDesc, srv)
}

func _VectorService_Upsert_Handler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(UpsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Upsert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VectorService_Upsert_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).Upsert(ctx, req.(*UpsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_Query_Handler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VectorService_Query_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// VectorService_ServiceDesc describes vector_service.VectorService.
var VectorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vector_service.VectorService",
	HandlerType: (*VectorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upsert", Handler: _VectorService_Upsert_Handler},
		{MethodName: "Query", Handler: _VectorService_Query_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vector_service.proto",
}
