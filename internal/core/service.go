package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/lasfile/internal/config"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// DefaultIngestTimeout bounds an ingest when Options.Timeout is zero.
const DefaultIngestTimeout = 2 * time.Minute

// Options controls how the service loads files.
type Options struct {
	MaxFileSize   int64
	Encoding      lasio.Encoding
	ParallelParse bool

	// RejectInvalid refuses to store files that fail the critical check.
	RejectInvalid bool
	Timeout       time.Duration
}

// OptionsFromConfig builds Options from the ingest settings.
func OptionsFromConfig(cfg config.IngestConfig) (Options, error) {
	enc, err := lasio.ParseEncoding(cfg.Encoding)
	if err != nil {
		return Options{}, fmt.Errorf("ingest encoding: %w", err)
	}
	return Options{
		MaxFileSize:   int64(cfg.MaxFileSize),
		Encoding:      enc,
		ParallelParse: cfg.ParallelParse,
		RejectInvalid: cfg.RejectInvalid,
		Timeout:       cfg.Timeout,
	}, nil
}

func (o Options) loadOptions() lasio.Options {
	return lasio.Options{Encoding: o.Encoding, MaxSize: o.MaxFileSize, Parallel: o.ParallelParse}
}

// Service loads, checks, stores and exports LAS files. It is used by the
// HTTP handlers and by the CLI's ingest and watch commands.
type Service struct {
	store   store.Store
	limiter *IngestLimiter
	opts    Options
}

// NewService creates a Service. A nil limiter admits every request.
func NewService(st store.Store, limiter *IngestLimiter, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultIngestTimeout
	}
	if opts.Encoding == "" {
		opts.Encoding = lasio.EncodingAuto
	}
	return &Service{store: st, limiter: limiter, opts: opts}
}

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Limiter returns the ingest limiter, or nil.
func (s *Service) Limiter() *IngestLimiter { return s.limiter }

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// acquire takes an ingest slot and returns its release function.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.limiter == nil {
		return func() {}, nil
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	return s.limiter.Release, nil
}
