// Package types defines the record types shared by the hospital-ops engines.
package types

// Patient is a record in the admission queue.
type Patient struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Condition string `json:"condition"`
}

// Supply is a stock record on the supply stack.
type Supply struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Batch    string `json:"batch"`
	Expiry   string `json:"expiry"` // YYYY-MM-DD
	Notes    string `json:"notes"`  // free text, may contain commas
}

// Ambulance is a vehicle on the duty roster.
// ShiftStart and ShiftEnd are minutes since midnight; 0,0 means no shift assigned.
type Ambulance struct {
	ID         int    `json:"id"`
	Vehicle    string `json:"vehicle"`
	Operator   string `json:"operator"`
	Notes      string `json:"notes"`
	ShiftStart int    `json:"shift_start"`
	ShiftEnd   int    `json:"shift_end"`
	OnDuty     bool   `json:"on_duty"`
}

// EmergencyCase is a triage record. Lower Priority is more urgent.
type EmergencyCase struct {
	ID       int    `json:"id"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// Engine names used in logs, metrics and the journal.
const (
	EngineAdmission = "admission"
	EngineSupply    = "supply"
	EngineDispatch  = "dispatch"
	EngineTriage    = "triage"
)
