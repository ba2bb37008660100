// Package storage persists analysis reports with pluggable backends.
// Backend "badger" embeds a BadgerHold store at a local path; "surreal"
// connects to a SurrealDB instance.
package storage

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
)

// Backend type constants.
const (
	BackendBadger  = "badger"
	BackendSurreal = "surreal"
)

// ErrReportNotFound reports a cache miss. Both backends return it wrapped,
// so callers branch with errors.Is.
var ErrReportNotFound = errors.New("report not found")

// Manager implements interfaces.StorageManager over the configured backend.
type Manager struct {
	reports interfaces.ReportStore
	logger  *common.Logger
}

// NewManager creates a StorageManager for the configured backend.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendBadger
	}

	var (
		store interfaces.ReportStore
		err   error
	)
	switch backend {
	case BackendBadger:
		store, err = NewBadgerStore(logger, config.Storage.Path)
	case BackendSurreal:
		store, err = NewSurrealStore(logger, config.Storage)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surreal)", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	logger.Info().Str("backend", backend).Msg("Storage manager initialized")

	return &Manager{reports: store, logger: logger}, nil
}

func (m *Manager) ReportStore() interfaces.ReportStore {
	return m.reports
}

func (m *Manager) Close() error {
	return m.reports.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
