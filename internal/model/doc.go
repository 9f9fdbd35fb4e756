// Package model defines the data structures shared across a11yscan.
//
// This package contains the following main types:
//   - PageSnapshot: the structural facts extracted from a rendered page
//   - CheckResult: the verdict of one accessibility check
//   - ComplianceReport: the ten check results with their score
//   - Recommendation: remediation text attached to a failed check
//   - Analysis: the working state of one analysis run
//   - Result: the client-facing result returned by the API, CLI and MCP tool
//
// Types here carry no behaviour beyond construction and small accessors, so
// that the guard, rules, render, recommend and pipeline packages can share
// them without import cycles. All types serialize to JSON for reports and
// history storage.
package model
