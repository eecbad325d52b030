package coordinator

import (
	"fmt"

	"github.com/ecanizales/plandag/pkg/domain"
)

// Validator validates story batches before planning or execution
type Validator struct{}

// NewValidator creates a new story batch validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the structural requirements every batch must meet:
// non-empty, ids present, no duplicate ids.
func (v *Validator) Validate(stories []domain.Story) error {
	if len(stories) == 0 {
		return fmt.Errorf("batch must contain at least one story")
	}

	seen := make(map[string]bool, len(stories))
	for i, s := range stories {
		if s.ID == "" {
			return fmt.Errorf("story at index %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate story id: %s", s.ID)
		}
		seen[s.ID] = true
	}

	return nil
}

// ValidateExecutable additionally rejects dependencies on ids that were
// never declared as stories. Planning tolerates such external placeholders;
// execution cannot, because there is nothing to run for them.
func (v *Validator) ValidateExecutable(stories []domain.Story) error {
	if err := v.Validate(stories); err != nil {
		return err
	}

	declared := make(map[string]bool, len(stories))
	for _, s := range stories {
		declared[s.ID] = true
	}
	for _, s := range stories {
		for _, dep := range s.Dependencies {
			if !declared[dep] {
				return fmt.Errorf("story %s depends on %s, which is not declared in the batch", s.ID, dep)
			}
		}
	}

	return nil
}
