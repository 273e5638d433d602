// Package server implements the secret-hiding proxy the widget talks to.
//
// The proxy exposes two endpoint families: a completion proxy that forwards
// sanitized chat-completion requests to the vendor with a server-held API
// key, and a host proxy that forwards allow-listed host API sub-paths with a
// server-held bearer token. Both respond to CORS preflight requests so the
// widget iframe can reach them from the host origin.
//
// The package also provides Kubernetes health probes and a dedicated
// Prometheus metrics listener.
package server
