// Package cli parses and validates command-line arguments and owns
// process-level concerns like exit codes. It translates CLI flags into the
// application's internal configuration.
package cli
