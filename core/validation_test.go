package core

import (
	"errors"
	"testing"
)

func TestValidateCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  *ContinuationCursor
		wantErr error
	}{
		{
			name:   "valid cursor",
			cursor: &ContinuationCursor{NextIndex: 50, Total: 100, DoneCount: 40, ErrorCount: 10},
		},
		{
			name:   "fresh cursor",
			cursor: &ContinuationCursor{Total: 100},
		},
		{
			name:    "nil cursor",
			cursor:  nil,
			wantErr: ErrInvalidCursor,
		},
		{
			name:    "negative index",
			cursor:  &ContinuationCursor{NextIndex: -1, Total: 10},
			wantErr: ErrNegativeCounter,
		},
		{
			name:    "done beyond total",
			cursor:  &ContinuationCursor{NextIndex: 10, Total: 10, DoneCount: 11},
			wantErr: ErrCursorOutOfRange,
		},
		{
			name:    "index beyond total",
			cursor:  &ContinuationCursor{NextIndex: 11, Total: 10},
			wantErr: ErrCursorOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCursor(tt.cursor)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCursor() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCursor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRunRecord(t *testing.T) {
	tests := []struct {
		name    string
		run     *RunRecord
		wantErr error
	}{
		{
			name: "valid run",
			run:  &RunRecord{ID: "b7f9", Stats: ImportStats{Total: 10, Processed: 10}},
		},
		{
			name:    "nil run",
			run:     nil,
			wantErr: ErrInvalidRunRecord,
		},
		{
			name:    "empty id",
			run:     &RunRecord{},
			wantErr: ErrEmptyRunID,
		},
		{
			name:    "processed beyond total",
			run:     &RunRecord{ID: "b7f9", Stats: ImportStats{Total: 5, Processed: 6}},
			wantErr: ErrInvalidRunRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunRecord(tt.run)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRunRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRunRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
