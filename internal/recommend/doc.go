// Package recommend turns failed accessibility checks into remediation
// advice.
//
// A Merger asks an optional Generator for one recommendation per failed
// check and falls back to a fixed per-check template whenever generation
// fails, times out or returns too little text. Generator failures are never
// surfaced to callers.
//
// Two generators are provided: ReplicateGenerator talks to the Replicate
// predictions API and OpenAIGenerator to any OpenAI-compatible chat
// completions endpoint.
package recommend
