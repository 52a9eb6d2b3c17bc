package journal

// ============================================================================
// Journal Type Definitions
// Responsibility: Define the audit events written for every mutation
// ============================================================================

// EventType names the mutation an event records.
type EventType string

const (
	EventAdmit        EventType = "ADMIT"        // Patient joined the admission queue
	EventDischarge    EventType = "DISCHARGE"    // Oldest patient left the queue
	EventPush         EventType = "PUSH"         // Supply batch stacked
	EventConsume      EventType = "CONSUME"      // Units taken from the top batch
	EventRegister     EventType = "REGISTER"     // Ambulance joined the rotation
	EventRotate       EventType = "ROTATE"       // Duty handed to the next ambulance
	EventAssignShift  EventType = "ASSIGN_SHIFT" // Duty window changed
	EventRefreshDuty  EventType = "REFRESH_DUTY" // On-duty flags recomputed
	EventRemove       EventType = "REMOVE"       // Ambulance left the rotation
	EventLogCase      EventType = "LOG_CASE"     // Emergency case logged
	EventProcessCase  EventType = "PROCESS_CASE" // Most urgent case handled
	EventReprioritize EventType = "REPRIORITIZE" // Case priority changed
	EventImport       EventType = "IMPORT"       // Patients backfilled into triage
)

// Event is one journal line.
type Event struct {
	Seq       uint64    `json:"seq"`              // Monotonically increasing across sessions
	Type      EventType `json:"type"`             // Mutation kind
	Engine    string    `json:"engine"`           // admission, supply, dispatch or triage
	RecordID  int       `json:"record_id"`        // Affected record, 0 for batch events
	Detail    string    `json:"detail,omitempty"` // Human-readable summary
	Session   string    `json:"session"`          // Process run that wrote the event
	Timestamp int64     `json:"timestamp"`        // Unix millisecond timestamp
	Checksum  uint32    `json:"checksum"`         // CRC32 checksum
}

// EventHandler receives events during Replay. Returning an error stops the
// replay.
type EventHandler func(event Event) error
