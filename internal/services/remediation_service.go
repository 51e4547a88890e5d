package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/aura/internal/api"
	"github.com/miradorstack/aura/internal/tools"
	"github.com/miradorstack/aura/internal/utils"
)

// RemediationService implements the gRPC RemediationAgent service.
type RemediationService struct {
	api.UnimplementedRemediationAgentServer

	logger    *slog.Logger
	executor  tools.ToolExecutor
	sessions  api.Sessions
	latencies *utils.LatencyTracker
}

// NewRemediationService constructs the service facade.
func NewRemediationService(logger *slog.Logger, executor tools.ToolExecutor, sessions api.Sessions) *RemediationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemediationService{
		logger:    logger,
		executor:  executor,
		sessions:  sessions,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// ListTools returns the registered tool definitions.
func (s *RemediationService) ListTools(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if s.executor == nil {
		return nil, status.Error(codes.FailedPrecondition, "tool executor not configured")
	}
	return encode(map[string]any{"tools": s.executor.ListTools()})
}

// InvokeTool runs one tool call and returns its JSON content.
func (s *RemediationService) InvokeTool(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.executor == nil {
		return nil, status.Error(codes.FailedPrecondition, "tool executor not configured")
	}
	var in api.InvokeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	start := time.Now()
	res, err := s.executor.Execute(ctx, tools.ToolCall{ID: in.ID, Name: in.Name, Arguments: in.Arguments})
	s.latencies.Observe(time.Since(start))
	if err != nil {
		s.logger.Debug("tool call refused", slog.String("tool", in.Name), slog.Any("error", err))
		return nil, api.StatusFromError(err)
	}
	if count := s.latencies.Count(); count >= 50 && count%50 == 0 {
		s.logger.Info("tool latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	out := api.InvokeResponse{CallID: res.CallID, Content: res.Content}
	if err := json.Unmarshal([]byte(res.Content), &out.Result); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("decode tool content: %v", err))
	}
	return encode(out)
}

// CreateSession opens a new workflow session.
func (s *RemediationService) CreateSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireSessions(); err != nil {
		return nil, err
	}
	id, view, err := s.sessions.Create(ctx)
	if err != nil {
		s.logger.Error("create session failed", slog.Any("error", err))
		return nil, api.StatusFromError(err)
	}
	return encode(api.ViewResponse{SessionID: id, View: view})
}

// SelectScenario chooses the scenario of a session.
func (s *RemediationService) SelectScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireSessions(); err != nil {
		return nil, err
	}
	var in api.SelectRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.SessionID == "" || in.Scenario == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id and scenario are required")
	}
	view, err := s.sessions.Select(ctx, in.SessionID, in.Scenario)
	if err != nil {
		return nil, api.StatusFromError(err)
	}
	return encode(api.ViewResponse{SessionID: in.SessionID, View: view})
}

// Advance applies a trigger to a session.
func (s *RemediationService) Advance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireSessions(); err != nil {
		return nil, err
	}
	var in api.AdvanceRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.SessionID == "" || in.Trigger == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id and trigger are required")
	}
	view, err := s.sessions.Advance(ctx, in.SessionID, in.Trigger)
	if err != nil {
		return nil, api.StatusFromError(err)
	}
	return encode(api.ViewResponse{SessionID: in.SessionID, View: view})
}

// CurrentView returns the records a session has revealed so far.
func (s *RemediationService) CurrentView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.sessionID(req)
	if err != nil {
		return nil, err
	}
	view, err := s.sessions.View(ctx, id)
	if err != nil {
		return nil, api.StatusFromError(err)
	}
	return encode(api.ViewResponse{SessionID: id, View: view})
}

// ResetSession returns a session to idle.
func (s *RemediationService) ResetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.sessionID(req)
	if err != nil {
		return nil, err
	}
	view, err := s.sessions.Reset(ctx, id)
	if err != nil {
		return nil, api.StatusFromError(err)
	}
	return encode(api.ViewResponse{SessionID: id, View: view})
}

// CloseSession discards a session.
func (s *RemediationService) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := s.sessionID(req)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Close(ctx, id); err != nil {
		return nil, api.StatusFromError(err)
	}
	return &structpb.Struct{}, nil
}

// LatencyP95 returns the current p95 tool call latency.
func (s *RemediationService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func (s *RemediationService) requireSessions() error {
	if s.sessions == nil {
		return status.Error(codes.FailedPrecondition, "session manager not configured")
	}
	return nil
}

func (s *RemediationService) sessionID(req *structpb.Struct) (string, error) {
	if err := s.requireSessions(); err != nil {
		return "", err
	}
	var in api.SessionRequest
	if err := decode(req, &in); err != nil {
		return "", err
	}
	if in.SessionID == "" {
		return "", status.Error(codes.InvalidArgument, "session_id is required")
	}
	return in.SessionID, nil
}

func decode(req *structpb.Struct, v any) error {
	if err := api.FromStruct(req, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := api.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
