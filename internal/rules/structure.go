package rules

import (
	"fmt"

	"github.com/nao1215/a11yscan/internal/model"
)

// ReadingSequenceCheck verifies the heading hierarchy.
type ReadingSequenceCheck struct{}

// NewReadingSequenceCheck creates a ReadingSequenceCheck.
func NewReadingSequenceCheck() *ReadingSequenceCheck {
	return &ReadingSequenceCheck{}
}

// Name returns the check name.
func (c *ReadingSequenceCheck) Name() model.CheckName {
	return model.CheckReadingSequence
}

// Limitation returns an empty string.
func (c *ReadingSequenceCheck) Limitation() string { return "" }

// Evaluate fails when there are no headings, when there is no h1, or when a
// heading is more than one level deeper than the heading before it. The
// first heading is compared against level 0. Snapshots list headings grouped
// by ascending level, where the previous level is also the deepest so far.
func (c *ReadingSequenceCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	if len(s.Headings) == 0 {
		return fail(c.Name(), "No headings found in the document. Use heading elements (h1-h6) to establish a clear document structure.")
	}

	skipped := false
	last := 0
	for _, h := range s.Headings {
		if h.Level > last+1 {
			skipped = true
		}
		last = h.Level
	}

	if !s.HasLevel(1) {
		return fail(c.Name(), "No h1 heading found. Every page should have a main heading (h1) to establish document hierarchy.")
	}
	if skipped {
		return fail(c.Name(), "Heading levels are skipped. Headings should follow a logical sequence (e.g., h1 → h2 → h3, not h1 → h3).")
	}
	return pass(c.Name(), "Document has a logical heading hierarchy with proper h1-h6 structure.")
}

// SensoryCuesCheck verifies that images and interactive elements carry a
// text alternative.
type SensoryCuesCheck struct{}

// NewSensoryCuesCheck creates a SensoryCuesCheck.
func NewSensoryCuesCheck() *SensoryCuesCheck {
	return &SensoryCuesCheck{}
}

// Name returns the check name.
func (c *SensoryCuesCheck) Name() model.CheckName {
	return model.CheckSensoryCues
}

// Limitation returns an empty string.
func (c *SensoryCuesCheck) Limitation() string { return "" }

// Evaluate reports images first. Interactive elements are only reported
// when every image has an alternative.
func (c *SensoryCuesCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	missingAlt := 0
	for _, img := range s.Images {
		if !img.HasAlt && img.Title == "" {
			missingAlt++
		}
	}
	if missingAlt > 0 {
		return fail(c.Name(), fmt.Sprintf("Found %d image(s) without alt text. Images should have descriptive alt attributes for screen readers.", missingAlt))
	}

	unlabeled := 0
	for _, el := range s.InteractiveElements {
		if el.Text == "" && el.AriaLabel == "" && el.AriaLabelledBy == "" {
			unlabeled++
		}
	}
	if unlabeled > 0 {
		return fail(c.Name(), fmt.Sprintf("Found %d interactive element(s) that may rely only on visual cues. Add text labels or ARIA labels.", unlabeled))
	}
	return pass(c.Name(), "Interactive elements and images have appropriate text alternatives.")
}

// BypassBlocksCheck verifies that a skip link or landmark exists.
type BypassBlocksCheck struct{}

// NewBypassBlocksCheck creates a BypassBlocksCheck.
func NewBypassBlocksCheck() *BypassBlocksCheck {
	return &BypassBlocksCheck{}
}

// Name returns the check name.
func (c *BypassBlocksCheck) Name() model.CheckName {
	return model.CheckBypassBlocks
}

// Limitation returns an empty string.
func (c *BypassBlocksCheck) Limitation() string { return "" }

// Evaluate passes when any link is a skip link or the page has landmarks.
func (c *BypassBlocksCheck) Evaluate(s *model.PageSnapshot) model.CheckResult {
	if s.HasLandmarks {
		return c.passed()
	}
	for _, l := range s.Links {
		if l.IsSkipLink {
			return c.passed()
		}
	}
	return fail(c.Name(), "No skip links or ARIA landmarks found. Add skip links at the top of the page or use ARIA landmarks to help users navigate efficiently.")
}

func (c *BypassBlocksCheck) passed() model.CheckResult {
	return pass(c.Name(), "Skip links or ARIA landmarks are present, allowing users to bypass repeated content.")
}
