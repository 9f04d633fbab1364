package main

// Exit codes. Per-document failures during extraction are reported in
// the log stream and counters, not in the exit code.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid values)
	ExitDataError   = 3 // Store bootstrap or data error
)
