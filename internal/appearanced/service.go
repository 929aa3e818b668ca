package appearanced

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described by hand with well-known protobuf messages, so no
// generated code is needed on either side.
const (
	ServiceName = "appearances.v1.Appearances"

	methodGetAppearance          = "/" + ServiceName + "/GetAppearance"
	methodGetEffectiveAppearance = "/" + ServiceName + "/GetEffectiveAppearance"
	methodListAppearances        = "/" + ServiceName + "/ListAppearances"
	methodGetStatus              = "/" + ServiceName + "/GetStatus"
	methodWatch                  = "/" + ServiceName + "/Watch"
)

// AppearanceService is the server API.
type AppearanceService interface {
	GetAppearance(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetEffectiveAppearance(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAppearances(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Watch(*emptypb.Empty, grpc.ServerStream) error
}

// RegisterAppearanceService registers srv with a gRPC server.
func RegisterAppearanceService(s grpc.ServiceRegistrar, srv AppearanceService) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AppearanceService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAppearance", Handler: getAppearanceHandler},
		{MethodName: "GetEffectiveAppearance", Handler: getEffectiveAppearanceHandler},
		{MethodName: "ListAppearances", Handler: listAppearancesHandler},
		{MethodName: "GetStatus", Handler: getStatusHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "appearances/v1/appearances.proto",
}

func getAppearanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AppearanceService).GetAppearance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetAppearance}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AppearanceService).GetAppearance(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getEffectiveAppearanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return emptyUnary(srv, ctx, dec, interceptor, methodGetEffectiveAppearance, AppearanceService.GetEffectiveAppearance)
}

func listAppearancesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return emptyUnary(srv, ctx, dec, interceptor, methodListAppearances, AppearanceService.ListAppearances)
}

func getStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return emptyUnary(srv, ctx, dec, interceptor, methodGetStatus, AppearanceService.GetStatus)
}

func emptyUnary(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
	method string,
	call func(AppearanceService, context.Context, *emptypb.Empty) (*structpb.Struct, error),
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return call(srv.(AppearanceService), ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
	handler := func(ctx context.Context, req any) (any, error) {
		return call(srv.(AppearanceService), ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AppearanceService).Watch(in, stream)
}
