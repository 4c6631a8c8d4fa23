// Package orchestrator wires the page pipeline: page definition → fields with
// fetched options → form or list state → renderer. Hosts use the building
// blocks (NewForm, NewList, Render*) to keep state across requests; one-shot
// callers such as the CLI use Generate.
package orchestrator
