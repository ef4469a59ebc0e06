// Package generation resolves a provider name to a text-generation backend and
// issues single-prompt completions against it.
//
// The provider set is closed: poe (OpenAI-compatible API via go-openai),
// ollama (local models via langchaingo), and openrouter (raw chat completions
// with status-aware retry). The lookup table is built once from configuration;
// a provider without credentials is left out of the table and requests for it
// fail with a configuration error. Callers own retry policy for poe and
// ollama.
package generation
