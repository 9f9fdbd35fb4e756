package recommend

import "github.com/nao1215/a11yscan/internal/model"

// GenericTemplate is used for check names without a dedicated template.
const GenericTemplate = "Review and fix the accessibility issue mentioned in the check details."

var templates = map[model.CheckName]string{
	model.CheckReadingSequence: "Use proper heading hierarchy (h1-h6) to establish document structure. Start with an h1 for the main page title, and use h2 for major sections, h3 for subsections, etc. Never skip heading levels.",
	model.CheckSensoryCues:     "Provide text alternatives for all visual indicators. Add descriptive alt text to images, use text labels alongside color indicators, and ensure all interactive elements have accessible names.",
	model.CheckColorUsage:      "Never rely solely on color to convey information. Use icons, text, or patterns in addition to color. Ensure text has sufficient color contrast (at least 4.5:1 for normal text, 3:1 for large text).",
	model.CheckKeyboardAccess:  "Ensure all interactive elements (links, buttons, form controls) are keyboard accessible. Test with Tab key navigation. Remove any negative tabindex values unless absolutely necessary.",
	model.CheckKeyboardTrap:    "Ensure users can navigate into and out of all sections using only the keyboard. Modals and dialogs should trap focus within them but allow Escape to close. Provide clear exit mechanisms.",
	model.CheckPointerCancel:   "Ensure hover-only interactions also work with click/tap. Allow users to cancel pointer actions (e.g., drag-and-drop should be cancelable). Avoid hover-only menus or tooltips.",
	model.CheckLabelName:       "Associate form labels with inputs using the 'for' attribute or wrap inputs in label elements. Use aria-label or aria-labelledby when labels cannot be visually associated.",
	model.CheckTimeLimits:      "If content has time limits, allow users to adjust, extend, or turn them off. Provide warning before timeouts and clear controls to extend sessions.",
	model.CheckSeizureContent:  "Ensure no content flashes more than 3 times per second. If animations are necessary, provide options to reduce motion or disable animations.",
	model.CheckBypassBlocks:    "Add skip links at the top of the page that allow users to jump to main content. Use ARIA landmarks (role='main', role='navigation') to help screen reader users navigate efficiently.",
}

// Template returns the fixed recommendation for a check name, or
// GenericTemplate for unknown names.
func Template(name model.CheckName) string {
	if t, ok := templates[name]; ok {
		return t
	}
	return GenericTemplate
}
