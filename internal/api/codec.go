package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/aura/internal/models"
)

// ToStruct converts any JSON-encodable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode struct: %w", err)
	}
	return out, nil
}

// FromStruct decodes a protobuf Struct into v using the JSON field names.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

// SessionRequest addresses an existing session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// SelectRequest chooses a scenario for a session.
type SelectRequest struct {
	SessionID string `json:"session_id"`
	Scenario  string `json:"scenario"`
}

// AdvanceRequest applies a trigger to a session.
type AdvanceRequest struct {
	SessionID string `json:"session_id"`
	Trigger   string `json:"trigger"`
}

// InvokeRequest runs one agent tool.
type InvokeRequest struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// InvokeResponse carries the tool output both raw and decoded.
type InvokeResponse struct {
	CallID  string         `json:"call_id"`
	Content string         `json:"content"`
	Result  map[string]any `json:"result,omitempty"`
}

// ViewResponse wraps a pipeline view with its session.
type ViewResponse struct {
	SessionID string      `json:"session_id"`
	View      models.View `json:"view"`
}
