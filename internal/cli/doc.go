// Package cli implements the keyline command-line interface.
//
// Commands load timeline documents through the document package, so
// every file the CLI touches passes schema validation and invariant
// re-validation before any command logic runs.
//
// Exit codes: 0 success, 1 document failure (invalid or malformed
// documents), 2 command error (bad flags, unreadable files). Commands
// return *ExitError; main maps it to the process exit code with
// GetExitCode.
package cli
