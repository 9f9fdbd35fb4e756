package model

// CheckName identifies one of the ten accessibility checks.
// The string value is the human-readable name shown to clients and used
// to key recommendation templates.
type CheckName string

// The ten check names, in declaration order.
const (
	CheckReadingSequence CheckName = "Meaningful Reading Sequence"
	CheckSensoryCues     CheckName = "Not Relying Only on Sensory Cues"
	CheckColorUsage      CheckName = "Color Usage"
	CheckKeyboardAccess  CheckName = "Keyboard Accessibility"
	CheckKeyboardTrap    CheckName = "No Keyboard Trap"
	CheckPointerCancel   CheckName = "Pointer Cancellation"
	CheckLabelName       CheckName = "Label Correctly Matches Accessible Name"
	CheckTimeLimits      CheckName = "Time Limit Adjustability"
	CheckSeizureContent  CheckName = "No Seizure-Triggering Flashing Content"
	CheckBypassBlocks    CheckName = "Ability to Bypass Repeated Blocks"
)

// TotalChecks is the number of checks in every compliance report.
const TotalChecks = 10

// CheckNames returns the ten check names in declaration order.
func CheckNames() []CheckName {
	return []CheckName{
		CheckReadingSequence,
		CheckSensoryCues,
		CheckColorUsage,
		CheckKeyboardAccess,
		CheckKeyboardTrap,
		CheckPointerCancel,
		CheckLabelName,
		CheckTimeLimits,
		CheckSeizureContent,
		CheckBypassBlocks,
	}
}

// String returns the check name.
func (n CheckName) String() string {
	return string(n)
}

// CheckResult is the verdict of a single check. It is produced once by the
// check function and never modified afterwards.
type CheckResult struct {
	// Name is one of the ten fixed check names.
	Name CheckName `json:"name"`

	// Passed is true when the page satisfies the check.
	Passed bool `json:"passed"`

	// Details explains the verdict in plain text.
	Details string `json:"details"`
}

// Recommendation is remediation advice for a failed check.
// Passed checks never carry one.
type Recommendation struct {
	CheckName CheckName `json:"checkName"`
	Text      string    `json:"recommendation"`
}
