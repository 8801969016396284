// Package manager ties the policy lifecycle together: loading YAML
// definitions from disk, compiling them, publishing compiled policies
// to a thread-safe registry, and verifying assignments against them.
//
// # Hot Reload
//
// The manager supports atomic hot reload with publish-by-swap
// semantics: a recompiled policy replaces its predecessor in one
// registry write, and a failed recompilation leaves the previously
// published version untouched. In-flight verifications keep the
// CompiledPolicy pointer they started with, so a swap never changes a
// verification mid-run.
//
// # Watching
//
// FileWatcher wraps fsnotify with debouncing so a burst of editor
// writes triggers one reload, not one per write event.
package manager
