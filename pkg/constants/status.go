package constants

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"

	StatusOK = "ok"
)

const (
	// MetricUnknown is stored in the size/duration columns until the
	// pipeline has measured the source.
	MetricUnknown = -1

	ContentQueue = "content:created"
)

// IsTerminal reports whether a content status accepts no further
// transitions.
func IsTerminal(status string) bool {
	return status == StatusReady || status == StatusFailed
}
