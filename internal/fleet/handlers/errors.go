package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// mapServiceError maps domain or repository errors to appropriate gRPC status codes.
func (a *API) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		a.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

// writeError renders err as a JSON error body with the HTTP status of its gRPC code.
func (a *API) writeError(w http.ResponseWriter, err error) {
	st := status.Convert(a.mapServiceError(err))
	body := errorResponse{
		Code:    st.Code().String(),
		Message: st.Message(),
	}

	var migration *e.MigrationRequiredError
	if errors.As(err, &migration) {
		body.Details = migration
	}

	a.respond(w, runtime.HTTPStatusFromCode(st.Code()), body)
}

func invalidPayload(err error) error {
	if errors.Is(err, e.ErrInvalidInput) {
		return err
	}
	return e.Invalid("invalid JSON payload: %v", err)
}

// validationError flattens validator failures into one invalid-input error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return e.Invalid("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return e.Invalid("%s", strings.Join(msgs, "; "))
}
