// Package grpcapi implements the Calculator gRPC service on top of the
// session store.
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/keypad-calculator/pkg/calculator"
	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
	"github.com/lemonberrylabs/keypad-calculator/pkg/types"
)

// Server implements the Calculator gRPC service.
type Server struct {
	store *store.Store
	grpc  *grpc.Server
}

// New creates a new gRPC server wrapping the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	gs := grpc.NewServer()
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

func (s *Server) CreateSession(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sess, err := s.store.CreateSession("")
	if err != nil {
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}
	return sessionToProto(sess)
}

func (s *Server) GetSession(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.store.GetSession(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return sessionToProto(sess)
}

func (s *Server) PressKey(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	name := fields["session"].GetStringValue()
	label := fields["label"].GetStringValue()

	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "session is required")
	}
	if !editor.ValidLabel(label) {
		return nil, status.Errorf(codes.InvalidArgument, "unknown key %q", label)
	}

	sess, err := s.store.PressKeys(name, label)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return sessionToProto(sess)
}

func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	expression := req.GetValue()
	if len(expression) > calculator.MaxExpressionLength {
		return nil, status.Errorf(codes.InvalidArgument, "expression exceeds %d bytes", calculator.MaxExpressionLength)
	}
	answer, err := calculator.Answer(expression)

	out := map[string]interface{}{
		"expression": expression,
		"ready":      calculator.Ready(expression),
		"answer":     answer,
	}
	if ce := types.AsCalcError(err); ce != nil {
		tags := make([]interface{}, len(ce.Tags))
		for i, t := range ce.Tags {
			tags[i] = t
		}
		out["error"] = map[string]interface{}{
			"message": ce.Message,
			"tags":    tags,
		}
	}

	pb, err := structpb.NewStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return pb, nil
}

// --- Internal helpers ---

func sessionToProto(sess *store.Session) (*structpb.Struct, error) {
	m := map[string]interface{}{
		"name":       sess.Name,
		"expression": sess.State.Expression,
		"answer":     sess.State.Answer,
		"keyCount":   float64(sess.KeyCount),
		"createTime": sess.CreateTime.Format(time.RFC3339),
		"updateTime": sess.UpdateTime.Format(time.RFC3339),
	}
	if sess.Error != "" {
		m["error"] = sess.Error
	}

	pb, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode session: %v", err)
	}
	return pb, nil
}
