package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/session"
	"github.com/miradorstack/aura/internal/tools"
	"github.com/miradorstack/aura/internal/workflow"
)

// ErrorDomain is reported in ErrorInfo details.
const ErrorDomain = "aura.miradorstack.io"

// Reasons attached to ErrorInfo details.
const (
	ReasonUnknownScenario = "UNKNOWN_SCENARIO"
	ReasonOutOfOrderStage = "OUT_OF_ORDER_STAGE"
	ReasonSessionNotFound = "SESSION_NOT_FOUND"
)

// ErrInvalidRequest marks malformed caller input.
var ErrInvalidRequest = errors.New("invalid request")

// StatusFromError maps a domain error to a gRPC status error. Unknown
// scenarios carry the available types in an ErrorInfo detail.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		unknown *catalog.UnknownScenarioError
		ooo     *workflow.OutOfOrderStageError
	)
	switch {
	case errors.As(err, &unknown):
		return withInfo(codes.NotFound, err.Error(), ReasonUnknownScenario, map[string]string{
			"scenario":        unknown.ID,
			"available_types": strings.Join(unknown.AvailableTypes(), ","),
		})
	case errors.As(err, &ooo):
		return withInfo(codes.FailedPrecondition, err.Error(), ReasonOutOfOrderStage, map[string]string{
			"state":   string(ooo.State),
			"trigger": string(ooo.Trigger),
			"stage":   string(ooo.Stage),
		})
	case errors.Is(err, session.ErrNotFound):
		return withInfo(codes.NotFound, err.Error(), ReasonSessionNotFound, nil)
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, tools.ErrInvalidCall):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func withInfo(code codes.Code, msg, reason string, metadata map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: ErrorDomain, Metadata: metadata})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ErrorInfoFrom extracts the ErrorInfo detail of a status error, if any.
func ErrorInfoFrom(err error) *errdetails.ErrorInfo {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	return nil
}

// httpError maps a domain error to an HTTP status and JSON body.
func httpError(err error) (int, map[string]any) {
	var (
		unknown *catalog.UnknownScenarioError
		ooo     *workflow.OutOfOrderStageError
	)
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound, map[string]any{
			"error":           err.Error(),
			"available_types": unknown.AvailableTypes(),
		}
	case errors.As(err, &ooo):
		return http.StatusConflict, map[string]any{
			"error":   err.Error(),
			"state":   ooo.State,
			"trigger": ooo.Trigger,
		}
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, map[string]any{"error": err.Error()}
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, tools.ErrInvalidCall):
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	default:
		return http.StatusInternalServerError, map[string]any{"error": err.Error()}
	}
}
