// Package internal documents the date context server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain/datecontext: the resolution cascade, validation, and events
// - extract: phrase rules plus the primary (hybrid) and fallback (regex) extractors
// - llm: the language model client used by the primary extractor
// - mcp: Model Context Protocol tools, resources, and prompts
// - config, metrics, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
