// Package launch selects kernel launch parameters for the GPU architecture a
// build targets.
//
// A kernel author declares a Box: an ordered list of Records, each tagged
// with the Target it was tuned for or with Fallback. Resolve picks exactly
// one Record for the active target. An exact match always beats the
// fallback; when neither exists resolution fails.
//
// Resolution is meant to happen before any kernel can run. The launchbox
// generator resolves declaration files during go generate and fails the
// build on error. Code that declares boxes in Go can use MustResolve from a
// package-level var so the process aborts during initialization instead.
package launch
