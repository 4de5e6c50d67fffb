package hypothesis

import (
	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/types"
)

// checkTransition enforces the stage machine rules for a move from the
// hypothesis's current stage to target.
//
// ARCHIVED is always reachable. Backward and same-level moves along the
// linear order are always allowed. A strictly forward move requires every
// checklist item satisfied and every required approval approved; on failure
// the error carries the blocking labels and approver names so the caller can
// surface exactly what is in the way.
func checkTransition(hyp *storage.Hypothesis, target types.Stage) error {
	if target == types.StageArchived {
		return nil
	}

	current := hyp.Record.Stage
	currentIdx := current.Index()
	targetIdx := target.Index()
	if targetIdx < 0 {
		return validationErrorf("unknown stage transition to '%s'", target)
	}

	// Readiness only gates forward movement.
	if currentIdx < 0 || targetIdx <= currentIdx {
		return nil
	}

	var incomplete []string
	for _, item := range hyp.Checklist {
		if !item.Satisfied() {
			incomplete = append(incomplete, item.Label)
		}
	}
	var pending []string
	for _, approval := range hyp.Approvals {
		if approval.Required && approval.Status != types.ApprovalApproved {
			pending = append(pending, approval.ApproverName)
		}
	}

	if len(incomplete) > 0 || len(pending) > 0 {
		return &InvalidTransitionError{
			From:                current,
			To:                  target,
			IncompleteChecklist: incomplete,
			PendingApprovers:    pending,
		}
	}
	return nil
}
