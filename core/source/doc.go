// Package source defines the boundary between upstream systems and the
// sync pipeline.
//
// Every upstream (the 1C API, the Google Sheets document) is wrapped in an
// adapter implementing the Source interface, which produces normalized
// Records. The reconcile engine never branches on the source type; all
// source-specific behavior lives behind Fetch.
//
// # Error Taxonomy
//
// Adapters classify their failures so the orchestrator can decide on
// retries without inspecting transport details:
//
//   - TransientError: timeouts, rate limits, upstream 5xx. Retried with
//     backoff up to the configured bound.
//   - FatalError: auth rejection, malformed source schema. Fails the
//     source immediately.
package source
