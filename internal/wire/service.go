package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)


//=========================================== MonWire Service
//
// Hand-written in the shape protoc-gen-go-grpc would generate: two RPCs,
// Deliver (unary, every non-chunk message family wrapped in Envelope)
// and SyncStream (bidirectional streaming of MonSyncMsg, one call per
// sync session, so the one-chunk-in-flight invariant is enforced by the
// stream itself).


type MonWireClient interface {
	Deliver(ctx context.Context, in *Envelope, opts ...grpc.CallOption) (*Envelope, error)
	SyncStream(ctx context.Context, opts ...grpc.CallOption) (MonWire_SyncStreamClient, error)
}

type monWireClient struct {
	cc grpc.ClientConnInterface
}

func NewMonWireClient(cc grpc.ClientConnInterface) MonWireClient {
	return &monWireClient{cc}
}

func (c *monWireClient) Deliver(ctx context.Context, in *Envelope, opts ...grpc.CallOption) (*Envelope, error) {
	out := new(Envelope)
	if err := c.cc.Invoke(ctx, "/wire.MonWire/Deliver", in, out, opts...); err != nil { return nil, err }
	return out, nil
}

func (c *monWireClient) SyncStream(ctx context.Context, opts ...grpc.CallOption) (MonWire_SyncStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &MonWireServiceDesc.Streams[0], "/wire.MonWire/SyncStream", opts...)
	if err != nil { return nil, err }
	return &monWireSyncStreamClient{stream}, nil
}

type MonWire_SyncStreamClient interface {
	Send(*MonSyncMsg) error
	Recv() (*MonSyncMsg, error)
	grpc.ClientStream
}

type monWireSyncStreamClient struct {
	grpc.ClientStream
}

func (x *monWireSyncStreamClient) Send(m *MonSyncMsg) error { return x.ClientStream.SendMsg(m) }

func (x *monWireSyncStreamClient) Recv() (*MonSyncMsg, error) {
	m := new(MonSyncMsg)
	if err := x.ClientStream.RecvMsg(m); err != nil { return nil, err }
	return m, nil
}

type MonWireServer interface {
	Deliver(context.Context, *Envelope) (*Envelope, error)
	SyncStream(MonWire_SyncStreamServer) error
}

type UnimplementedMonWireServer struct{}

func (UnimplementedMonWireServer) Deliver(context.Context, *Envelope) (*Envelope, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Deliver not implemented")
}

func (UnimplementedMonWireServer) SyncStream(MonWire_SyncStreamServer) error {
	return status.Errorf(codes.Unimplemented, "method SyncStream not implemented")
}

func RegisterMonWireServer(s grpc.ServiceRegistrar, srv MonWireServer) {
	s.RegisterService(&MonWireServiceDesc, srv)
}

func _MonWire_Deliver_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Envelope)
	if err := dec(in); err != nil { return nil, err }
	if interceptor == nil { return srv.(MonWireServer).Deliver(ctx, in) }
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/wire.MonWire/Deliver"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MonWireServer).Deliver(ctx, req.(*Envelope))
	}
	return interceptor(ctx, in, info, handler)
}

func _MonWire_SyncStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(MonWireServer).SyncStream(&monWireSyncStreamServer{stream})
}

type MonWire_SyncStreamServer interface {
	Send(*MonSyncMsg) error
	Recv() (*MonSyncMsg, error)
	grpc.ServerStream
}

type monWireSyncStreamServer struct {
	grpc.ServerStream
}

func (x *monWireSyncStreamServer) Send(m *MonSyncMsg) error { return x.ServerStream.SendMsg(m) }

func (x *monWireSyncStreamServer) Recv() (*MonSyncMsg, error) {
	m := new(MonSyncMsg)
	if err := x.ServerStream.RecvMsg(m); err != nil { return nil, err }
	return m, nil
}

var MonWireServiceDesc = grpc.ServiceDesc{
	ServiceName: "wire.MonWire",
	HandlerType: (*MonWireServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deliver", Handler: _MonWire_Deliver_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "SyncStream", Handler: _MonWire_SyncStream_Handler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "wire.proto",
}
