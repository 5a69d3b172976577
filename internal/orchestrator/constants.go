package orchestrator

// Manager configuration constants
const (
	// One run waits while another executes.
	QueueDepth = 1

	// History and event buffer for the result store.
	HistorySize = 20
	EventBuffer = 32

	NotifyErrorTitle = "christina: capture failed"
)
