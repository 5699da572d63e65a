package scan

// ProgressReporter receives callbacks while a scan runs. Batch callbacks
// may arrive concurrently from different goroutines.
type ProgressReporter interface {
	// OnScanStart is called once files are grouped into batches.
	OnScanStart(files, batches int)

	// OnBatchComplete is called after each provider batch, with the error
	// it failed with if any.
	OnBatchComplete(provider string, files int, err error)

	// OnScanComplete is called when the scan finished successfully.
	OnScanComplete(stats Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnScanStart(files, batches int)                        {}
func (NoOpProgressReporter) OnBatchComplete(provider string, files int, err error) {}
func (NoOpProgressReporter) OnScanComplete(stats Stats)                            {}
