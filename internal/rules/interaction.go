package rules

import (
	"fmt"

	"github.com/nao1215/a11yscan/internal/model"
)

// focusableTags are native controls that must stay in the tab order.
var focusableTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// KeyboardAccessCheck verifies that interactive elements can be reached
// with the Tab key.
type KeyboardAccessCheck struct{}

// NewKeyboardAccessCheck creates a KeyboardAccessCheck.
func NewKeyboardAccessCheck() *KeyboardAccessCheck {
	return &KeyboardAccessCheck{}
}

// Name returns the check name.
func (c *KeyboardAccessCheck) Name() model.CheckName {
	return model.CheckKeyboardAccess
}

// Limitation returns an empty string.
func (c *KeyboardAccessCheck) Limitation() string { return "" }

// Evaluate counts enabled elements with a negative tab index that are
// native controls, carry a role, or handle clicks.
func (c *KeyboardAccessCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	unreachable := 0
	for _, el := range s.InteractiveElements {
		if el.Disabled || el.TabIndex >= 0 {
			continue
		}
		if focusableTags[el.Tag] || el.Role != "" || el.HasOnclick {
			unreachable++
		}
	}
	if unreachable > 0 {
		return fail(c.Name(), fmt.Sprintf("Found %d interactive element(s) that are not keyboard accessible. Ensure all interactive elements can be reached using the Tab key.", unreachable))
	}
	return pass(c.Name(), "All interactive elements are keyboard accessible.")
}

// LabelNameCheck verifies that every form input has an accessible name.
type LabelNameCheck struct{}

// NewLabelNameCheck creates a LabelNameCheck.
func NewLabelNameCheck() *LabelNameCheck {
	return &LabelNameCheck{}
}

// Name returns the check name.
func (c *LabelNameCheck) Name() model.CheckName {
	return model.CheckLabelName
}

// Limitation returns an empty string.
func (c *LabelNameCheck) Limitation() string { return "" }

// Evaluate counts inputs without label, aria-label and aria-labelledby.
func (c *LabelNameCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	unlabeled := 0
	for _, in := range s.FormInputs {
		if in.Label == "" && in.AriaLabel == "" && in.AriaLabelledBy == "" {
			unlabeled++
		}
	}
	if unlabeled > 0 {
		return fail(c.Name(), fmt.Sprintf("Found %d form input(s) without proper labels. Ensure all form inputs have associated labels or ARIA labels.", unlabeled))
	}
	return pass(c.Name(), "All form inputs have properly associated labels that match their accessible names.")
}

// TimeLimitsCheck fails when scripts set timers or auto-advance content.
type TimeLimitsCheck struct{}

// NewTimeLimitsCheck creates a TimeLimitsCheck.
func NewTimeLimitsCheck() *TimeLimitsCheck {
	return &TimeLimitsCheck{}
}

// Name returns the check name.
func (c *TimeLimitsCheck) Name() model.CheckName {
	return model.CheckTimeLimits
}

// Limitation returns an empty string.
func (c *TimeLimitsCheck) Limitation() string { return "" }

// Evaluate fails when the snapshot signals timers or auto-advance.
func (c *TimeLimitsCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	if s.HasTimers || s.HasAutoAdvance {
		return fail(c.Name(), "Timers or auto-advancing content detected. Ensure users can adjust, extend, or turn off time limits.")
	}
	return pass(c.Name(), "No time limits detected, or time limits are adjustable.")
}
