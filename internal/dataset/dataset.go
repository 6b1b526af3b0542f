package dataset

import (
	"context"
	"errors"
)

// Split names.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// ErrInvalidSplit is returned when a corpus cannot be partitioned.
var ErrInvalidSplit = errors.New("invalid dataset split")

// Record is one row of the parallel corpus keyed by column name.
type Record map[string]string

// DatasetDict maps split names to records.
type DatasetDict map[string][]Record

// Example is a tokenized record.
type Example struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
	Labels        []int `json:"labels"`
}

// TokenizedDict maps split names to tokenized examples.
type TokenizedDict map[string][]Example

// Source resolves a dataset name into its splits.
type Source interface {
	Load(ctx context.Context, name string) (DatasetDict, error)
}
