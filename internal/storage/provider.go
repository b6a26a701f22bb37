package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// ProviderState describes where a Provider is in its lifecycle.
type ProviderState int

const (
	// StateUninitialized means no handle is open and no open is in flight.
	StateUninitialized ProviderState = iota
	// StateInitializing means an open is in flight.
	StateInitializing
	// StateReady means a handle is cached.
	StateReady
)

func (s ProviderState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("ProviderState(%d)", int(s))
	}
}

// Opener opens a database handle for a DSN.
type Opener func(ctx context.Context, dsn string) (*sql.DB, error)

// SchemaFunc prepares a freshly opened handle before it is shared.
type SchemaFunc func(ctx context.Context, db *sql.DB) error

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithOpener replaces the default SQLite opener.
func WithOpener(open Opener) ProviderOption {
	return func(p *Provider) {
		p.open = open
	}
}

// WithSchema replaces the default schema step.
func WithSchema(schema SchemaFunc) ProviderOption {
	return func(p *Provider) {
		p.schema = schema
	}
}

// initCall is a single in-flight initialization shared by every caller that
// arrives while it runs.
type initCall struct {
	done chan struct{}
	db   *sql.DB
	err  error
}

// Provider hands out one shared database handle, opening it lazily on first
// use. It is safe for concurrent use.
type Provider struct {
	open   Opener
	schema SchemaFunc
	db     *sql.DB
	call   *initCall
	dsn    string
	mu     sync.Mutex
}

// NewProvider creates a Provider for dsn. Nothing is opened until Get.
func NewProvider(dsn string, opts ...ProviderOption) *Provider {
	p := &Provider{
		dsn:    dsn,
		open:   OpenSQLite,
		schema: EnsureSchema,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the shared handle, opening it and applying the schema on the
// first call. Concurrent first callers wait on the same initialization and
// receive the same handle or the same error. A failed initialization leaves
// the Provider uninitialized so a later call can try again.
//
// Cancelling ctx stops this caller from waiting; the initialization itself
// keeps running for the others.
func (p *Provider) Get(ctx context.Context) (*sql.DB, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.db != nil {
		db := p.db
		p.mu.Unlock()
		return db, nil
	}

	call := p.call
	if call == nil {
		call = &initCall{done: make(chan struct{})}
		p.call = call
		go p.initialize(context.WithoutCancel(ctx), call)
	}
	p.mu.Unlock()

	select {
	case <-call.done:
		return call.db, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Provider) initialize(ctx context.Context, call *initCall) {
	slog.Debug("Opening database", "dsn", p.dsn)

	db, err := p.open(ctx, p.dsn)
	if err == nil {
		if schemaErr := p.schema(ctx, db); schemaErr != nil {
			_ = db.Close()
			db, err = nil, schemaErr
		}
	}

	p.mu.Lock()
	call.db, call.err = db, err
	if err == nil {
		p.db = db
	}
	p.call = nil
	p.mu.Unlock()
	close(call.done)

	if err != nil {
		slog.Error("Database initialization failed", "dsn", p.dsn, "error", err)
		return
	}
	slog.Debug("Database ready", "dsn", p.dsn)
}

// Close releases the shared handle. A later Get opens a fresh one. If an
// initialization is in flight, Close waits for it and closes its result.
func (p *Provider) Close() error {
	p.mu.Lock()
	call := p.call
	p.mu.Unlock()

	if call != nil {
		<-call.done
	}

	p.mu.Lock()
	db := p.db
	p.db = nil
	p.mu.Unlock()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// State reports the current lifecycle state.
func (p *Provider) State() ProviderState {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.db != nil:
		return StateReady
	case p.call != nil:
		return StateInitializing
	default:
		return StateUninitialized
	}
}

// DSN returns the data source the Provider opens.
func (p *Provider) DSN() string {
	return p.dsn
}
