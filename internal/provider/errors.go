package provider

import (
	"errors"
	"fmt"
)

// ErrWorkerFailed marks a worker process that exited unsuccessfully.
var ErrWorkerFailed = errors.New("worker failed")

// ProviderError reports a failed invocation of one provider over a batch
// of files.
type ProviderError struct {
	Provider string
	Files    []string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed on %d file(s): %v", e.Provider, len(e.Files), e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
