// Package workspace persists one run's checkpoints and reports.
//
// A workspace is a directory named from the run date (W%U-%Y-%m-%d) holding
// two namespaces. Checkpoints under checkpoints/ are the only resume signal: a
// phase whose checkpoint exists is complete. Reports are free-form text files,
// including sub-directories such as summaries/, that double as the input to
// later phases. The checkpoint listing is cached when the manager is built and
// updated on every write, so a single process must own the workspace; Lock
// enforces that across processes.
package workspace
