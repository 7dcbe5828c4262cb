package store

import (
	"context"

	"seopipe/internal/model"
)

// RecordReader provides read access to records.
type RecordReader interface {
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, kind string) ([]model.Record, error)
}

// RecordWriter creates records.
type RecordWriter interface {
	CreateRecord(ctx context.Context, rec model.Record) error
}

// RecordUpdater applies an atomic read-modify-write to a single record.
type RecordUpdater interface {
	AtomicUpdate(ctx context.Context, id string, mutate func(*model.Record) error) (*model.Record, error)
}

// RecordRepository combines all record operations for the API layer.
type RecordRepository interface {
	RecordReader
	RecordWriter
}
