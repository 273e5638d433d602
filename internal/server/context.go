package server

import (
	"context"
	"sync"
)

// ServerContext holds shared state for the proxy server: upstream
// credentials, lifecycle context and shutdown flag.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	completionKey string
	hostToken     string

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context carrying the server-held
// upstream credentials. The credentials may be empty; handlers respond with
// a configuration error when the credential they need is missing.
func NewServerContext(ctx context.Context, completionKey, hostToken string) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		completionKey: completionKey,
		hostToken:     hostToken,
	}
}

// Context returns the server lifecycle context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CompletionKey returns the completion provider API key.
func (sc *ServerContext) CompletionKey() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.completionKey
}

// HostToken returns the host API token.
func (sc *ServerContext) HostToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.hostToken
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown marks the server context as shut down and cancels its context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
