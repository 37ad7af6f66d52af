package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// Business codes shared by every handler.
const (
	codeValidation      = 10001
	codeUnauthenticated = 10002
	codeBodyTooLarge    = 10005

	codeEventNotFound  = 12001
	codeEventForbidden = 12002
)

// MustGetUserID reads the user id set by JWTAuth. On false the 401 has
// already been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, codeUnauthenticated, "Authentication required")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, codeUnauthenticated, "Authentication required")
		return "", false
	}
	return s, true
}

// uuidParam reads a path parameter that must be a UUID.
func uuidParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if _, err := uuid.Parse(v); err != nil {
		response.BadRequest(c, codeValidation, fmt.Sprintf("Invalid %s", name))
		return "", false
	}
	return v, true
}

// bindOptionalJSON binds a JSON body that may be absent. An empty body, with
// or without a Content-Length, leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return false
	}
	return true
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bindError writes the response for a failed ShouldBind call.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "Request body too large")
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: lowerFirst(fe.Field()), Rule: fe.Tag(), Param: fe.Param()})
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "Validation failed", details)
		return
	}

	response.BadRequest(c, codeValidation, "Invalid request body")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// handleEventAccess maps the ownership errors every event-scoped service
// can return. It reports whether it wrote a response.
func handleEventAccess(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, codeEventNotFound, err.Error())
	case errors.Is(err, service.ErrEventForbidden):
		response.Forbidden(c, codeEventForbidden, err.Error())
	default:
		return false
	}
	return true
}
