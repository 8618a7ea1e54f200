package matchserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service description for proto/match/v1/match.proto. Every message is a
// well-known Struct, so the descriptor and handlers are written out here
// rather than generated.

const ServiceName = "manasearch.match.v1.MatchService"

const (
	MatchService_PlayMatch_FullMethodName   = "/" + ServiceName + "/PlayMatch"
	MatchService_GetMatch_FullMethodName    = "/" + ServiceName + "/GetMatch"
	MatchService_ListMatches_FullMethodName = "/" + ServiceName + "/ListMatches"
	MatchService_Plan_FullMethodName        = "/" + ServiceName + "/Plan"
)

// MatchServiceServer is the server API for MatchService.
type MatchServiceServer interface {
	// PlayMatch plays one match to completion and returns its record
	PlayMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetMatch returns a stored record by match_id
	GetMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListMatches returns stored records, newest first
	ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Plan deals a game and returns the planner's opening decision
	Plan(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedMatchServiceServer can be embedded to have forward compatible implementations.
type UnimplementedMatchServiceServer struct{}

func (UnimplementedMatchServiceServer) PlayMatch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PlayMatch not implemented")
}
func (UnimplementedMatchServiceServer) GetMatch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMatch not implemented")
}
func (UnimplementedMatchServiceServer) ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMatches not implemented")
}
func (UnimplementedMatchServiceServer) Plan(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Plan not implemented")
}

func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for MatchService.
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PlayMatch",
			Handler:    unaryHandler(MatchService_PlayMatch_FullMethodName, MatchServiceServer.PlayMatch),
		},
		{
			MethodName: "GetMatch",
			Handler:    unaryHandler(MatchService_GetMatch_FullMethodName, MatchServiceServer.GetMatch),
		},
		{
			MethodName: "ListMatches",
			Handler:    unaryHandler(MatchService_ListMatches_FullMethodName, MatchServiceServer.ListMatches),
		},
		{
			MethodName: "Plan",
			Handler:    unaryHandler(MatchService_Plan_FullMethodName, MatchServiceServer.Plan),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// MatchServiceClient is the client API for MatchService.
type MatchServiceClient interface {
	PlayMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListMatches(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Plan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type matchServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchServiceClient(cc grpc.ClientConnInterface) MatchServiceClient {
	return &matchServiceClient{cc}
}

func (c *matchServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) PlayMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MatchService_PlayMatch_FullMethodName, in, opts...)
}

func (c *matchServiceClient) GetMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MatchService_GetMatch_FullMethodName, in, opts...)
}

func (c *matchServiceClient) ListMatches(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MatchService_ListMatches_FullMethodName, in, opts...)
}

func (c *matchServiceClient) Plan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MatchService_Plan_FullMethodName, in, opts...)
}
