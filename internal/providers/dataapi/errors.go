package dataapi

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
)

// Error is returned for failed data API operations
type Error struct {
	Operation  string
	StatusCode int // zero when no HTTP response was received
	Errors     gqlerror.List
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "data api %s failed", e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if len(e.Errors) > 0 {
		messages := make([]string, 0, len(e.Errors))
		for _, gqlErr := range e.Errors {
			messages = append(messages, gqlErr.Message)
		}
		fmt.Fprintf(&b, ": %s", strings.Join(messages, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fields returns the log fields describing the failure
func (e *Error) Fields() []zap.Field {
	fields := []zap.Field{zap.String("operation", e.Operation)}
	if e.StatusCode != 0 {
		fields = append(fields, zap.Int("statusCode", e.StatusCode))
	}
	for i, gqlErr := range e.Errors {
		prefix := fmt.Sprintf("graphqlError.%d.", i)
		fields = append(fields, zap.String(prefix+"message", gqlErr.Message))
		if len(gqlErr.Path) > 0 {
			fields = append(fields, zap.String(prefix+"path", gqlErr.Path.String()))
		}
		if code, ok := gqlErr.Extensions["code"]; ok {
			fields = append(fields, zap.Any(prefix+"code", code))
		}
	}
	return fields
}
