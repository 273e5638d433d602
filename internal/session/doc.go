// Package session orchestrates the summarization flow for the currently
// selected conversation.
//
// A Session tracks exactly one selected conversation at a time. Each Select
// call receives a monotonically increasing token; when a summary completes
// after a newer selection has taken over, its result is discarded rather than
// overwriting the newer state. Task creation and comment posting operate on
// an already summarized conversation and run independently of selection
// handling.
package session
