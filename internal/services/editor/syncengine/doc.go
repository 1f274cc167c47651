// Package syncengine keeps one editing session's face state consistent with
// the notifications its transport sends out.
//
// Every slider edit produces an immediate visual update; code regeneration is
// debounced so that a burst of edits costs a single encode. Imports replace
// the whole state at once and publish their code without waiting.
//
// Each Engine owns exactly one facestate.State and serialises edits, imports,
// timer firings and Close with its own mutex. Engines never touch each
// other's state; the Hub only maps session IDs to engines.
package syncengine
