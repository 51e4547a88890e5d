package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/tools"
)

// Client calls a remote RemediationAgent service.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// ListTools fetches the tool definitions registered by the service.
func (c *Client) ListTools(ctx context.Context) ([]tools.ToolDefinition, error) {
	var out struct {
		Tools []tools.ToolDefinition `json:"tools"`
	}
	if err := c.invoke(ctx, MethodListTools, struct{}{}, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// InvokeTool runs one tool remotely.
func (c *Client) InvokeTool(ctx context.Context, call tools.ToolCall) (InvokeResponse, error) {
	var out InvokeResponse
	req := InvokeRequest{ID: call.ID, Name: call.Name, Arguments: call.Arguments}
	if err := c.invoke(ctx, MethodInvokeTool, req, &out); err != nil {
		return InvokeResponse{}, err
	}
	return out, nil
}

// CreateSession opens a new session.
func (c *Client) CreateSession(ctx context.Context) (ViewResponse, error) {
	var out ViewResponse
	err := c.invoke(ctx, MethodCreateSession, struct{}{}, &out)
	return out, err
}

// SelectScenario chooses the scenario of a session.
func (c *Client) SelectScenario(ctx context.Context, sessionID, scenario string) (models.View, error) {
	return c.view(ctx, MethodSelectScenario, SelectRequest{SessionID: sessionID, Scenario: scenario})
}

// Advance applies trigger to a session.
func (c *Client) Advance(ctx context.Context, sessionID string, trigger models.Trigger) (models.View, error) {
	return c.view(ctx, MethodAdvance, AdvanceRequest{SessionID: sessionID, Trigger: string(trigger)})
}

// CurrentView fetches the view of a session.
func (c *Client) CurrentView(ctx context.Context, sessionID string) (models.View, error) {
	return c.view(ctx, MethodCurrentView, SessionRequest{SessionID: sessionID})
}

// ResetSession returns a session to idle.
func (c *Client) ResetSession(ctx context.Context, sessionID string) (models.View, error) {
	return c.view(ctx, MethodResetSession, SessionRequest{SessionID: sessionID})
}

// CloseSession discards a session.
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	return c.invoke(ctx, MethodCloseSession, SessionRequest{SessionID: sessionID}, nil)
}

func (c *Client) view(ctx context.Context, method string, req any) (models.View, error) {
	var out ViewResponse
	if err := c.invoke(ctx, method, req, &out); err != nil {
		return models.View{}, err
	}
	return out.View, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, out any) error {
	in, err := ToStruct(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := FromStruct(resp, out); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
