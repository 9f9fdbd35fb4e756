// Package rules evaluates a rendered page snapshot against ten WCAG-derived
// accessibility checks and aggregates the verdicts into a compliance report.
//
// Every check is a pure function of a model.PageSnapshot. The Engine runs
// the registered checks in declaration order, so two evaluations of the same
// snapshot always produce identical reports.
//
// # Limitations
//
// Four checks cannot be decided from a static snapshot and always pass:
// Color Usage, No Keyboard Trap, Pointer Cancellation and No Seizure-Triggering
// Flashing Content. They are registered as LimitedCheck values and report
// what they do not analyze through Limitation.
package rules
