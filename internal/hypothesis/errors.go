package hypothesis

import (
	"fmt"
	"strings"

	"github.com/k2tech/ailab/internal/types"
)

// NotFoundError is returned when a hypothesis or sub-resource is absent, or
// when the hypothesis exists but has been archived.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}

// InvalidTransitionError reports a forward stage move blocked by gating.
// Either IncompleteChecklist or PendingApprovers is non-empty.
type InvalidTransitionError struct {
	From                types.Stage
	To                  types.Stage
	IncompleteChecklist []string
	PendingApprovers    []string
}

func (e *InvalidTransitionError) Error() string {
	if len(e.IncompleteChecklist) > 0 {
		return fmt.Sprintf("checklist items must be completed before moving to %s: %s",
			e.To, strings.Join(e.IncompleteChecklist, ", "))
	}
	return fmt.Sprintf("required approvals pending: %s", strings.Join(e.PendingApprovers, ", "))
}

// ValidationError reports malformed input: a missing owner, an unknown stage
// token, an out-of-range score.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
