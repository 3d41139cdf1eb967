package handler

import (
	"context"

	"google.golang.org/grpc"
)

const (
	commandServiceName = "raktar.v1.CommandService"
	executeFullMethod  = "/" + commandServiceName + "/Execute"
)

// CommandRequest is the payload of POST /api/command and of Execute.
type CommandRequest struct {
	RequestID string `json:"request_id"`
	Author    string `json:"author"`
	Channel   string `json:"channel"`
	Content   string `json:"content"`
}

type CommandResponse struct {
	Success bool     `json:"success"`
	Outcome string   `json:"outcome"`
	Replies []string `json:"replies,omitempty"`
	Message string   `json:"message,omitempty"`
}

type CommandServiceServer interface {
	Execute(context.Context, *CommandRequest) (*CommandResponse, error)
}

var commandServiceDesc = grpc.ServiceDesc{
	ServiceName: commandServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler:    executeHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&commandServiceDesc, srv)
}

func executeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: executeFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).Execute(ctx, req.(*CommandRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// CommandServiceClient calls a remote command service.
type CommandServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCommandServiceClient(cc grpc.ClientConnInterface) *CommandServiceClient {
	return &CommandServiceClient{cc: cc}
}

func (c *CommandServiceClient) Execute(ctx context.Context, in *CommandRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, executeFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
