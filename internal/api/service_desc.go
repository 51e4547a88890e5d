package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "aura.v1.RemediationAgent"

// Method names of the RemediationAgent service.
const (
	MethodListTools      = "ListTools"
	MethodInvokeTool     = "InvokeTool"
	MethodCreateSession  = "CreateSession"
	MethodSelectScenario = "SelectScenario"
	MethodAdvance        = "Advance"
	MethodCurrentView    = "CurrentView"
	MethodResetSession   = "ResetSession"
	MethodCloseSession   = "CloseSession"
)

// RemediationAgentServer is the server API for the RemediationAgent service.
// Requests and responses are google.protobuf.Struct documents whose fields
// mirror the JSON produced by the HTTP gateway.
type RemediationAgentServer interface {
	ListTools(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InvokeTool(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectScenario(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Advance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CurrentView(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedRemediationAgentServer can be embedded to keep forward compatibility.
type UnimplementedRemediationAgentServer struct{}

func (UnimplementedRemediationAgentServer) ListTools(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTools not implemented")
}

func (UnimplementedRemediationAgentServer) InvokeTool(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method InvokeTool not implemented")
}

func (UnimplementedRemediationAgentServer) CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}

func (UnimplementedRemediationAgentServer) SelectScenario(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SelectScenario not implemented")
}

func (UnimplementedRemediationAgentServer) Advance(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Advance not implemented")
}

func (UnimplementedRemediationAgentServer) CurrentView(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CurrentView not implemented")
}

func (UnimplementedRemediationAgentServer) ResetSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetSession not implemented")
}

func (UnimplementedRemediationAgentServer) CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseSession not implemented")
}

type unaryCall func(RemediationAgentServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// methodHandler has the signature grpc.MethodDesc expects for Handler.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler(method string, call unaryCall) methodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RemediationAgentServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RemediationAgentServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RemediationAgentServiceDesc describes the RemediationAgent service for grpc.Server.
var RemediationAgentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemediationAgentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodListTools, Handler: unaryHandler(MethodListTools, RemediationAgentServer.ListTools)},
		{MethodName: MethodInvokeTool, Handler: unaryHandler(MethodInvokeTool, RemediationAgentServer.InvokeTool)},
		{MethodName: MethodCreateSession, Handler: unaryHandler(MethodCreateSession, RemediationAgentServer.CreateSession)},
		{MethodName: MethodSelectScenario, Handler: unaryHandler(MethodSelectScenario, RemediationAgentServer.SelectScenario)},
		{MethodName: MethodAdvance, Handler: unaryHandler(MethodAdvance, RemediationAgentServer.Advance)},
		{MethodName: MethodCurrentView, Handler: unaryHandler(MethodCurrentView, RemediationAgentServer.CurrentView)},
		{MethodName: MethodResetSession, Handler: unaryHandler(MethodResetSession, RemediationAgentServer.ResetSession)},
		{MethodName: MethodCloseSession, Handler: unaryHandler(MethodCloseSession, RemediationAgentServer.CloseSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aura/v1/remediation_agent.proto",
}

// RegisterRemediationAgentServer registers srv with the gRPC service registrar.
func RegisterRemediationAgentServer(s grpc.ServiceRegistrar, srv RemediationAgentServer) {
	s.RegisterService(&RemediationAgentServiceDesc, srv)
}
