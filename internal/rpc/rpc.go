// Package rpc defines the daemon's control API: the wire messages, the
// service descriptor, and a typed client. Messages travel as JSON over gRPC
// through a registered codec, so no generated code is involved; client and
// server select the codec by content subtype.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "barkeep.StatusBarService"

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ============================================================================
// Message Types
// ============================================================================

// Empty is the request or response for methods that carry no payload.
type Empty struct{}

// SectionStatus describes one visibility section.
type SectionStatus struct {
	Section string `json:"section"`
	Hidden  bool   `json:"hidden"`
	Items   int    `json:"items"`
}

// StatusResponse is the daemon's full status snapshot.
type StatusResponse struct {
	Version             string          `json:"version"`
	PID                 int             `json:"pid"`
	Port                int             `json:"port"`
	AlwaysHiddenEnabled bool            `json:"always_hidden_enabled"`
	Sections            []SectionStatus `json:"sections"`
}

// SectionRequest names the section a show, hide, or toggle applies to.
type SectionRequest struct {
	Section string `json:"section"`
}

// SetAlwaysHiddenRequest enables or disables the always-hidden section.
type SetAlwaysHiddenRequest struct {
	Enabled bool `json:"enabled"`
}

// ============================================================================
// Service Definition
// ============================================================================

// StatusBarServer is the server interface for the control API.
type StatusBarServer interface {
	GetStatus(context.Context, *Empty) (*StatusResponse, error)
	ShowSection(context.Context, *SectionRequest) (*Empty, error)
	HideSection(context.Context, *SectionRequest) (*Empty, error)
	ToggleSection(context.Context, *SectionRequest) (*Empty, error)
	SetAlwaysHidden(context.Context, *SetAlwaysHiddenRequest) (*Empty, error)
	Shutdown(context.Context, *Empty) (*Empty, error)
}

// handler adapts one typed service method to the shape grpc.MethodDesc wants.
func handler[Req, Resp any](method string, call func(StatusBarServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StatusBarServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fmt.Sprintf("/%s/%s", ServiceName, method),
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(StatusBarServer), ctx, req.(*Req))
		})
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusBarServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: handler("GetStatus", StatusBarServer.GetStatus)},
		{MethodName: "ShowSection", Handler: handler("ShowSection", StatusBarServer.ShowSection)},
		{MethodName: "HideSection", Handler: handler("HideSection", StatusBarServer.HideSection)},
		{MethodName: "ToggleSection", Handler: handler("ToggleSection", StatusBarServer.ToggleSection)},
		{MethodName: "SetAlwaysHidden", Handler: handler("SetAlwaysHidden", StatusBarServer.SetAlwaysHidden)},
		{MethodName: "Shutdown", Handler: handler("Shutdown", StatusBarServer.Shutdown)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterStatusBarServer registers the StatusBarServer with the gRPC server.
func RegisterStatusBarServer(s *grpc.Server, srv StatusBarServer) {
	s.RegisterService(&serviceDesc, srv)
}

// ============================================================================
// Client
// ============================================================================

// StatusBarClient is a typed client for the control API.
type StatusBarClient struct {
	cc *grpc.ClientConn
}

// NewStatusBarClient creates a client over an established connection.
func NewStatusBarClient(cc *grpc.ClientConn) *StatusBarClient {
	return &StatusBarClient{cc: cc}
}

func (c *StatusBarClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, fmt.Sprintf("/%s/%s", ServiceName, method), in, out, grpc.CallContentSubtype(codecName))
}

// GetStatus fetches the daemon's status snapshot.
func (c *StatusBarClient) GetStatus(ctx context.Context) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, "GetStatus", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShowSection shows the named section.
func (c *StatusBarClient) ShowSection(ctx context.Context, section string) error {
	return c.invoke(ctx, "ShowSection", &SectionRequest{Section: section}, new(Empty))
}

// HideSection hides the named section.
func (c *StatusBarClient) HideSection(ctx context.Context, section string) error {
	return c.invoke(ctx, "HideSection", &SectionRequest{Section: section}, new(Empty))
}

// ToggleSection toggles the named section.
func (c *StatusBarClient) ToggleSection(ctx context.Context, section string) error {
	return c.invoke(ctx, "ToggleSection", &SectionRequest{Section: section}, new(Empty))
}

// SetAlwaysHidden enables or disables the always-hidden section.
func (c *StatusBarClient) SetAlwaysHidden(ctx context.Context, enabled bool) error {
	return c.invoke(ctx, "SetAlwaysHidden", &SetAlwaysHiddenRequest{Enabled: enabled}, new(Empty))
}

// Shutdown asks the daemon to exit.
func (c *StatusBarClient) Shutdown(ctx context.Context) error {
	return c.invoke(ctx, "Shutdown", &Empty{}, new(Empty))
}
