// Package cmd implements the threadlens command line interface.
//
// The following commands are available:
//
//   - serve: runs the widget backend, proxying completion and host API
//     requests with server-side credentials
//   - summarize: summarizes a single conversation from the terminal
//   - build-config: generates the public widget configuration artifact
//   - version: prints the version
package cmd
