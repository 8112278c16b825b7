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


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/importit/core"
	"github.com/poiesic/importit/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) *RunRepository {
	return &RunRepository{
		backend: backend,
	}
}

// SaveRun persists a run record and updates the start-time index.
// Saving an existing run ID overwrites the previous record.
func (r *RunRepository) SaveRun(ctx context.Context, run *core.RunRecord) error {
	if err := core.ValidateRunRecord(run); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(run.ID)
		value := storage.MarshalRun(run)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		dateKey := makeRunDateKey(run.StartedAt, run.ID)
		if err := tx.Set(dateKey, []byte(run.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetRun retrieves a run record by ID.
// Returns storage.ErrNotFound if no run with that ID exists.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*core.RunRecord, error) {
	if runID == "" {
		return nil, core.ErrEmptyRunID
	}
	var run *core.RunRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(runID)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			run, unmarshalErr = storage.UnmarshalRun(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRuns returns up to limit run records, most recently started first.
// A limit of zero or less returns all runs.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*core.RunRecord, error) {
	var results []*core.RunRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent runs first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key in the start-time index
		startKey := makeRunDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), "\xff")

		prefix := []byte(runDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && count >= limit {
				break
			}
			key := iter.Item().Key()

			// Check if we're still in the start-time index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the run ID from the index
			var runID string
			if err := iter.Item().Value(func(val []byte) error {
				runID = string(val)
				return nil
			}); err != nil {
				return err
			}

			// Look up the full record
			run, err := r.readRun(tx, makeRunKey(runID))
			if err != nil {
				return err
			}
			if run != nil {
				results = append(results, run)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// LatestRun returns the most recently started run record.
// Returns storage.ErrNotFound if no runs exist.
func (r *RunRepository) LatestRun(ctx context.Context) (*core.RunRecord, error) {
	runs, err := r.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, storage.ErrNotFound
	}
	return runs[0], nil
}

// readRun reads a run record by key within a transaction.
// Returns nil, nil if the key is missing.
func (r *RunRepository) readRun(tx *badger.Txn, key []byte) (*core.RunRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var run *core.RunRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalRun(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}
