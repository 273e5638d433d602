// Package missive provides a typed client for the Missive REST API.
//
// The client covers the surface the summarizer consumes: fetching conversations
// with their messages, listing users, creating tasks, adding assignees, and
// posting comments. All calls take a context and authenticate with a static
// bearer token.
//
// The base URL is configurable so the client can be pointed at the
// secret-hiding proxy instead of the vendor API directly.
package missive
