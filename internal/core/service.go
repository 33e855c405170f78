package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cssbattle/championship/internal/logging"
	"github.com/google/uuid"
)

// DefaultMaxFileSize bounds uploads when no limit is configured (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// DefaultSaveTimeout bounds the store call of a single import.
const DefaultSaveTimeout = 30 * time.Second

// Service provides the roster operations used by the web and CLI frontends.
type Service struct {
	store       PlayerStore
	limiter     *ImportLimiter
	metrics     Metrics
	maxFileSize int64
	saveTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter sets the limiter bounding concurrent imports.
func WithLimiter(l *ImportLimiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxFileSize sets the largest accepted upload in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithSaveTimeout bounds how long the store may take to save one import.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// NewService creates a Service that hands imported players to store.
func NewService(store PlayerStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		limiter:     NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime),
		maxFileSize: DefaultMaxFileSize,
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview parses an upload without saving anything.
func (s *Service) Preview(ctx context.Context, fileName string, r io.Reader) ([]PlayerRecord, error) {
	logger := logging.WithFields(ctx, "file", fileName)

	data, err := s.readUpload(r)
	if err != nil {
		logger.Warn("preview rejected", "error", err)
		return nil, err
	}

	records, err := ParseBytes(data)
	if err != nil {
		logger.Info("preview failed validation", "error", err)
		return nil, err
	}

	logger.Debug("preview parsed", "rows", len(records))
	return records, nil
}

// Import parses an upload and saves every player through the store.
// Either all players are saved or none is.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	importID := uuid.New().String()
	uploader := UploaderFromContext(ctx)
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"file", fileName,
		"ip", uploader.IP,
		"client_id", uploader.ClientID,
	)

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("import rejected", "error", err)
		s.observe(OutcomeRejected, 0, start)
		return nil, err
	}
	defer s.limiter.Release()

	logger.Info("import started")

	data, err := s.readUpload(r)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		s.observe(outcomeFor(err), 0, start)
		return nil, err
	}

	records, err := ParseBytes(data)
	if err != nil {
		logger.Info("import failed validation", "error", err)
		s.observe(OutcomeInvalid, 0, start)
		return nil, err
	}

	saveCtx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	saved, err := s.store.SavePlayers(saveCtx, records)
	if err != nil {
		logger.Error("import save failed", "rows", len(records), "error", err)
		s.observe(outcomeFor(err), len(records), start)
		return nil, fmt.Errorf("save players: %w", err)
	}

	result := &ImportResult{
		ImportID:      importID,
		FileName:      fileName,
		Rows:          len(records),
		Total:         saved.Inserted + saved.Updated,
		Inserted:      saved.Inserted,
		Updated:       saved.Updated,
		GroupsCreated: saved.GroupsCreated,
		Players:       records,
		Duration:      time.Since(start),
	}

	logger.Info("import completed",
		"rows", result.Rows,
		"players", result.Total,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"groups_created", result.GroupsCreated,
		"duration_ms", result.Duration.Milliseconds(),
	)
	s.observe(OutcomeSuccess, result.Total, start)

	return result, nil
}

// Players lists stored players, optionally restricted to one group.
func (s *Service) Players(ctx context.Context, group string) ([]Player, error) {
	players, err := s.store.ListPlayers(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// Groups lists the known group names, sorted.
func (s *Service) Groups(ctx context.Context) ([]string, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Template returns the roster template workbook and its file name.
func (s *Service) Template() ([]byte, string, error) {
	data, err := GenerateTemplate()
	if err != nil {
		return nil, "", fmt.Errorf("generate template: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveTemplateDownload()
	}
	return data, TemplateFilename(), nil
}

// ActiveImports returns how many imports are running and the limit.
func (s *Service) ActiveImports() (active, capacity int) {
	return s.limiter.Active(), s.limiter.Capacity()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// readUpload reads r fully, failing once more than maxFileSize bytes arrive.
func (s *Service) readUpload(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, &ImportError{Kind: ErrFileRead, Err: err}
	}
	if n > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	return buf.Bytes(), nil
}

func (s *Service) observe(outcome ImportOutcome, rows int, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveImport(outcome, rows, time.Since(start))
}

// outcomeFor classifies a failed import for metrics.
func outcomeFor(err error) ImportOutcome {
	switch {
	case errors.Is(err, ErrTooManyImports), errors.Is(err, ErrFileTooLarge):
		return OutcomeRejected
	case errors.Is(err, ErrUnknownGroup):
		return OutcomeInvalid
	default:
		var ie *ImportError
		if errors.As(err, &ie) {
			return OutcomeInvalid
		}
		return OutcomeFailed
	}
}
