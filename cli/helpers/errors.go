package helpers

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchFailed marks a strict batch in which at least one file failed
	ErrBatchFailed = errors.New("batch failed")
)

// BatchError reports how many files of a strict batch failed
type BatchError struct {
	Failed int
	Total  int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d %s failed", e.Failed, e.Total, Pluralize(e.Total, "file", "files"))
}

func (e *BatchError) Is(target error) bool {
	return target == ErrBatchFailed
}

// NewBatchError creates a new batch error
func NewBatchError(failed, total int) error {
	return &BatchError{Failed: failed, Total: total}
}
