package tasklist

import (
	"fmt"
	"slices"

	"github.com/hay-kot/criterio"

	"taskman/internal/service"
)

// ValidateDraft checks the enumerated fields of a draft. The title is checked
// separately by SubmitForm; the server has the final say on everything.
func ValidateDraft(d service.Draft) error {
	return criterio.ValidateStruct(
		criterio.Run("priority", d.Priority, knownPriority),
		criterio.Run("status", d.Status, knownStatus),
	)
}

func knownPriority(p service.Priority) error {
	if !slices.Contains(service.Priorities, p) {
		return fmt.Errorf("must be one of low, medium, high")
	}
	return nil
}

func knownStatus(s service.Status) error {
	if !slices.Contains(service.Statuses, s) {
		return fmt.Errorf("must be pending or completed")
	}
	return nil
}
