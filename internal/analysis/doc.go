// Package analysis turns one question's free-text answers into a sentiment
// breakdown and a short ranked list of recurring ideas.
//
// Every function here is pure: no I/O, no logging, no shared mutable state.
// A *Lexicon is read-only after construction and may be shared by any number
// of concurrent Analyze calls.
package analysis
