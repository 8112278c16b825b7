// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package importit

import (
	"log/slog"

	"github.com/poiesic/importit/enrich"
	"github.com/poiesic/importit/pipeline"
	"github.com/poiesic/importit/remote"
	"github.com/poiesic/importit/remote/openai"
	"github.com/poiesic/importit/storage"
	"github.com/poiesic/importit/storage/badger"
)

// Database wires the storage backend, the run journal, and the remote
// service provider into one handle the control surface works with.
type Database struct {
	backend    *badger.Backend
	cursorRepo storage.CursorRepository
	runRepo    storage.RunRepository
	provider   remote.Provider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	remoteConfig *remote.Config
	provider     remote.Provider
	inMemory     bool
}

// WithRemoteConfig sets the configuration used to build the remote
// service provider.
func WithRemoteConfig(config *remote.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.remoteConfig = config
	}
}

// WithProvider injects a pre-built remote provider, bypassing the
// OpenAI-compatible default. Used by tests with mock services.
func WithProvider(provider remote.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all persisted state in memory.
// Cursors and run history are lost when the database closes.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the import database at filePath and builds the
// remote provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		remoteConfig: remote.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	cursorRepo := badger.NewCursorRepository(backend)
	runRepo := badger.NewRunRepository(backend)

	// Create remote provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.remoteConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:    backend,
		cursorRepo: cursorRepo,
		runRepo:    runRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close remote provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing remote provider", "err", err)
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CursorRepository() storage.CursorRepository {
	return db.cursorRepo
}

func (db *Database) RunRepository() storage.RunRepository {
	return db.runRepo
}

func (db *Database) Provider() remote.Provider {
	return db.provider
}

// NewScheduler builds a batch scheduler bound to the provider's import
// service.
func (db *Database) NewScheduler(opts ...pipeline.SchedulerOption) (*pipeline.Scheduler, error) {
	return pipeline.NewScheduler(db.provider.Importer(), opts...)
}

// NewLoop builds a continuation loop bound to the provider's enrichment
// service and the persisted cursor store.
func (db *Database) NewLoop(opts ...enrich.LoopOption) (*enrich.Loop, error) {
	return enrich.NewLoop(db.provider.Enricher(), db.cursorRepo, opts...)
}
