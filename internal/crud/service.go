// Package crud implements schema discovery and generic table operations
// against the configured CRUD target. Every operation opens its own
// connection through the adapter registry and closes it before returning.
package crud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/cricdash/internal/crud/statement"
	"github.com/leapstack-labs/cricdash/internal/schemacache"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Connector opens a connected adapter. An empty database connects to the
// server without selecting one.
type Connector func(ctx context.Context, database string) (adapter.Adapter, error)

// Service runs CRUD operations for one set of credentials.
type Service struct {
	creds     core.Credentials
	logger    *slog.Logger
	cache     *schemacache.Cache
	validator statement.ClauseValidator
	connect   Connector
	dialect   *adapter.Dialect
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache reuses discovered schemas until RefreshSchema is called.
func WithCache(c *schemacache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClauseValidator installs a validator for WHERE and SET fragments.
func WithClauseValidator(v statement.ClauseValidator) Option {
	return func(s *Service) { s.validator = v }
}

// WithConnector replaces the registry-backed connector.
func WithConnector(c Connector) Option {
	return func(s *Service) { s.connect = c }
}

// New creates a Service. The credentials' type must name a registered adapter.
func New(creds core.Credentials, opts ...Option) (*Service, error) {
	s := &Service{
		creds:  creds,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	unconnected, err := adapter.NewAdapter(creds.Type, s.logger)
	if err != nil {
		return nil, err
	}
	s.dialect = unconnected.Dialect()

	if s.connect == nil {
		s.connect = s.registryConnector
	}
	return s, nil
}

func (s *Service) registryConnector(ctx context.Context, database string) (adapter.Adapter, error) {
	a, err := adapter.NewAdapter(s.creds.Type, s.logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, core.AdapterConfig{Credentials: s.creds, Database: database}); err != nil {
		return nil, err
	}
	return a, nil
}

// Dialect returns the dialect of the CRUD target.
func (s *Service) Dialect() *adapter.Dialect {
	return s.dialect
}

// CacheKey identifies the target in the schema cache.
func (s *Service) CacheKey() string {
	return s.creds.Target()
}

func (s *Service) builder() statement.Builder {
	return statement.New(s.dialect, s.validator)
}

func (s *Service) target(database string) string {
	if database == "" {
		return s.creds.Target()
	}
	return s.creds.Target() + "/" + database
}

// open connects or returns a ConnectionError.
func (s *Service) open(ctx context.Context, op, database string) (adapter.Adapter, error) {
	a, err := s.connect(ctx, database)
	if err != nil {
		if adapter.IsClassified(err) {
			return nil, err
		}
		return nil, &core.ConnectionError{Op: op, Target: s.target(database), Err: err}
	}
	return a, nil
}

// opLogger tags every record of one operation with an op_id.
func (s *Service) opLogger(op string) *slog.Logger {
	return s.logger.With(slog.String("op", op), slog.String("op_id", uuid.NewString()))
}

func closeQuietly(log *slog.Logger, a adapter.Adapter) {
	if err := a.Close(); err != nil {
		log.Debug("close failed", slog.String("error", err.Error()))
	}
}

func elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// describe formats a request for logs.
func describe(req core.MutationRequest) string {
	return fmt.Sprintf("%T(%s)", req, req.TableName())
}
