// Package main hosts the newshub CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and the sources file once,
// builds the per-run environment, and hands it to the phase orchestrator.
// Heavy lifting lives in the internal packages; commands here only wire
// them together and render results for the operator.
package main
