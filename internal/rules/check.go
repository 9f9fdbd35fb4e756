package rules

import "github.com/nao1215/a11yscan/internal/model"

// Check is a single accessibility check.
type Check interface {
	// Name returns the fixed check name.
	Name() model.CheckName

	// Evaluate decides the check for the snapshot. It must not modify it.
	Evaluate(snapshot *model.PageSnapshot) model.CheckResult

	// Limitation describes what the check does not analyze. It is empty
	// for checks that inspect the snapshot.
	Limitation() string
}

// pass builds a passed result.
func pass(name model.CheckName, details string) model.CheckResult {
	return model.CheckResult{Name: name, Passed: true, Details: details}
}

// fail builds a failed result.
func fail(name model.CheckName, details string) model.CheckResult {
	return model.CheckResult{Name: name, Passed: false, Details: details}
}

// LimitedCheck is a check whose analysis is not implemented. It always
// passes with fixed details and reports its limitation.
type LimitedCheck struct {
	name       model.CheckName
	details    string
	limitation string
}

// Name returns the check name.
func (c *LimitedCheck) Name() model.CheckName { return c.name }

// Evaluate always passes.
func (c *LimitedCheck) Evaluate(_ *model.PageSnapshot) model.CheckResult {
	return pass(c.name, c.details)
}

// Limitation returns what the check does not analyze.
func (c *LimitedCheck) Limitation() string { return c.limitation }

// NewColorUsageCheck returns the Color Usage check. Contrast ratios and
// color-only signalling are not computed.
func NewColorUsageCheck() *LimitedCheck {
	return &LimitedCheck{
		name:       model.CheckColorUsage,
		details:    "Color is used appropriately with sufficient contrast and alternative indicators.",
		limitation: "color contrast and color-only information are not analyzed",
	}
}

// NewKeyboardTrapCheck returns the No Keyboard Trap check. Keyboard
// navigation is not simulated.
func NewKeyboardTrapCheck() *LimitedCheck {
	return &LimitedCheck{
		name:       model.CheckKeyboardTrap,
		details:    "No obvious keyboard traps detected. Ensure all interactive areas can be navigated into and out of using keyboard.",
		limitation: "keyboard navigation is not simulated",
	}
}

// NewPointerCancellationCheck returns the Pointer Cancellation check. Event
// listeners are not inspected.
func NewPointerCancellationCheck() *LimitedCheck {
	return &LimitedCheck{
		name:       model.CheckPointerCancel,
		details:    "Pointer interactions appear properly implemented. Ensure hover-only actions also work with click/tap.",
		limitation: "pointer event listeners are not inspected",
	}
}

// NewSeizureContentCheck returns the No Seizure-Triggering Flashing Content
// check. Animations are counted by the renderer but their flash frequency
// is not measured.
func NewSeizureContentCheck() *LimitedCheck {
	return &LimitedCheck{
		name:       model.CheckSeizureContent,
		details:    "No seizure-triggering content detected. Ensure no content flashes more than 3 times per second.",
		limitation: "animation flash frequency is not measured",
	}
}
