// ============================================================================
// Hospital Ops Facility - engine coordinator
// ============================================================================
//
// Package: internal/facility
// File: facility.go
// Purpose: Own the four engines and keep their files, journal and metrics
//          in step with every operation
//
// Components:
//   - admission.Queue  : waiting patients (FIFO)            -> patients.txt
//   - supply.Stack     : medical stock (LIFO)               -> medical_supplies.txt
//   - dispatch.Roster  : ambulance duty rotation (ring)     -> ambulances.txt
//   - triage.Board     : emergency cases (priority order)   -> emergency.txt
//   - journal.Journal  : append-only audit trail (optional) -> journal.log
//   - metrics.Collector: operation counters and record gauges
//
// Lifecycle:
//   New   -> wire components, nothing touches the disk
//   Start -> load every file, open the journal, backfill triage from
//            admission when auto-import is on
//   ...   -> one method per engine operation
//   Close -> final rewrite of every file, close the journal
//
// Persistence rule:
//   Every successful mutation is followed synchronously by a full rewrite of
//   that engine's file, one journal event and a metrics update. A rejected
//   operation changes nothing and is only counted.
//
// Failure handling:
//   - a file that cannot be read at Start puts its engine in memory-only
//     mode; its saves are skipped so the unreadable file is left alone
//   - a failed save is logged and retried on the next mutation and at Close
//   - journal problems are logged and never fail the operation
//
// ============================================================================

package facility

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/ChuLiYu/hospital-ops/internal/admission"
	"github.com/ChuLiYu/hospital-ops/internal/dispatch"
	"github.com/ChuLiYu/hospital-ops/internal/journal"
	"github.com/ChuLiYu/hospital-ops/internal/metrics"
	"github.com/ChuLiYu/hospital-ops/internal/shift"
	"github.com/ChuLiYu/hospital-ops/internal/snapshot"
	"github.com/ChuLiYu/hospital-ops/internal/supply"
	"github.com/ChuLiYu/hospital-ops/internal/triage"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("facility not started")
	// ErrJournalDisabled is returned by History when no journal is open.
	ErrJournalDisabled = errors.New("journal is disabled")
)

// ============================================================================
// Configuration
// ============================================================================

// Config locates the data files and sizes the bounded engines. Relative file
// names are resolved against DataDir.
type Config struct {
	DataDir string

	AdmissionFile     string
	AdmissionCapacity int

	SupplyFile string

	DispatchFile string

	TriageFile     string
	TriageCapacity int
	MaxPriority    int // 0 = unbounded
	ImportPriority int
	AutoImport     bool

	JournalEnabled bool
	JournalFile    string
	JournalSync    bool // flush and sync on every event
}

// DefaultConfig returns the stock file names and sizes.
func DefaultConfig() Config {
	return Config{
		DataDir:           "data",
		AdmissionFile:     "patients.txt",
		AdmissionCapacity: admission.DefaultCapacity,
		SupplyFile:        "medical_supplies.txt",
		DispatchFile:      "ambulances.txt",
		TriageFile:        "emergency.txt",
		TriageCapacity:    triage.DefaultCapacity,
		MaxPriority:       10,
		ImportPriority:    triage.DefaultImportPriority,
		AutoImport:        true,
		JournalEnabled:    true,
		JournalFile:       "journal.log",
	}
}

func (c Config) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Option customises a Facility.
type Option func(*Facility)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Facility) { f.log = l }
}

// WithClock replaces time.Now, used for duty refresh.
func WithClock(now func() time.Time) Option {
	return func(f *Facility) { f.now = now }
}

// WithMetrics shares an existing collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(f *Facility) { f.metrics = c }
}

// ============================================================================
// Facility
// ============================================================================

// store is the persistence state of one engine.
type store struct {
	manager    *snapshot.Manager
	memoryOnly bool // file could not be read at Start
	dirty      bool // last save failed
	encode     func() [][]string
}

// Facility coordinates the engines. It is safe for concurrent use; every
// operation runs to completion under one lock.
type Facility struct {
	mu      sync.Mutex
	cfg     Config
	log     *slog.Logger
	now     func() time.Time
	metrics *metrics.Collector
	journal *journal.Journal

	admission *admission.Queue
	supply    *supply.Stack
	dispatch  *dispatch.Roster
	triage    *triage.Board

	stores  map[string]*store
	started bool
	closed  bool
}

// New wires a facility from cfg. Nothing is read until Start.
func New(cfg Config, opts ...Option) *Facility {
	f := &Facility{
		cfg:       cfg,
		log:       slog.Default(),
		now:       time.Now,
		admission: admission.New(cfg.AdmissionCapacity),
		supply:    supply.New(),
		dispatch:  dispatch.New(),
		triage:    triage.New(cfg.TriageCapacity, cfg.MaxPriority),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.metrics == nil {
		f.metrics = metrics.NewCollector()
	}

	f.stores = map[string]*store{
		types.EngineAdmission: {
			manager: snapshot.NewManager(cfg.path(cfg.AdmissionFile), admission.Header),
			encode:  func() [][]string { return admission.EncodeRows(f.admission.Snapshot()) },
		},
		types.EngineSupply: {
			manager: snapshot.NewManager(cfg.path(cfg.SupplyFile), supply.Header),
			encode:  func() [][]string { return supply.EncodeRows(f.supply.Snapshot()) },
		},
		types.EngineDispatch: {
			manager: snapshot.NewManager(cfg.path(cfg.DispatchFile), dispatch.Header),
			encode:  func() [][]string { return dispatch.EncodeRows(f.dispatch.Snapshot()) },
		},
		types.EngineTriage: {
			manager: snapshot.NewManager(cfg.path(cfg.TriageFile), triage.Header),
			encode:  func() [][]string { return triage.EncodeRows(f.triage.Snapshot()) },
		},
	}
	return f
}

// Start loads every engine file, opens the journal and runs the triage
// backfill when configured. Unreadable files are not fatal.
func (f *Facility) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return nil
	}
	start := time.Now()
	f.log.Info("Loading data files...", "data_dir", f.cfg.DataDir)

	loadEngine(f, types.EngineAdmission, admission.DecodeRow, f.admission.Restore, f.admission.NextID)
	loadEngine(f, types.EngineSupply, supply.DecodeRow, f.supply.Restore, f.supply.NextID)
	loadEngine(f, types.EngineDispatch, dispatch.DecodeRow, f.dispatch.Restore, f.dispatch.NextID)
	loadEngine(f, types.EngineTriage, triage.DecodeRow, f.triage.Restore, f.triage.NextID)

	if f.cfg.JournalEnabled {
		j, err := journal.NewJournal(f.cfg.path(f.cfg.JournalFile), f.cfg.JournalSync)
		if err != nil {
			f.log.Warn("Journal unavailable, continuing without it", "path", f.cfg.path(f.cfg.JournalFile), "error", err)
		} else {
			f.journal = j
			f.log.Debug("Journal opened", "path", j.GetPath(), "session", j.Session(), "last_seq", j.GetLastSeq())
		}
	}

	f.started = true
	f.metrics.SetLoadDuration(time.Since(start))
	f.refreshGauges()

	if f.cfg.AutoImport {
		if _, err := f.importPatientsLocked(); err != nil {
			f.log.Warn("Automatic patient import skipped", "error", err)
		}
	}

	f.log.Info("Facility started", "duration", time.Since(start))
	return nil
}

// loadEngine reads one engine file, decodes its rows and restores the engine.
func loadEngine[T any](f *Facility, engine string, decode func(string) (T, error), restore func([]T) int, nextID func() int) {
	s := f.stores[engine]
	rows, err := s.manager.Load()
	if err != nil {
		s.memoryOnly = true
		f.log.Error("Cannot read data file, engine runs in memory only",
			"engine", engine, "path", s.manager.GetPath(), "error", err)
		return
	}

	records := make([]T, 0, len(rows))
	bad := 0
	for _, row := range rows {
		rec, err := decode(row.Text)
		if err != nil {
			bad++
			f.log.Warn("Skipping malformed row", "engine", engine, "line", row.Line, "error", err)
			continue
		}
		records = append(records, rec)
	}
	rejected := restore(records)
	skipped := bad + rejected
	f.metrics.RecordSkipped(engine, skipped)

	f.log.Info("Engine loaded",
		"engine", engine,
		"records", len(records)-rejected,
		"skipped", skipped,
		"next_id", nextID())
}

// Close writes every engine file one last time and closes the journal.
func (f *Facility) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || !f.started {
		f.closed = true
		return nil
	}
	f.closed = true

	var errs []error
	for _, engine := range engines {
		if err := f.save(engine); err != nil {
			errs = append(errs, err)
		}
	}
	if f.journal != nil {
		if err := f.journal.Close(); err != nil {
			f.log.Warn("Journal close failed", "error", err)
			errs = append(errs, err)
		}
	}
	f.log.Debug("Facility closed")
	return errors.Join(errs...)
}

var engines = []string{
	types.EngineAdmission,
	types.EngineSupply,
	types.EngineDispatch,
	types.EngineTriage,
}

// ============================================================================
// Persistence, journal and metrics plumbing
// ============================================================================

// save rewrites the file of engine. Memory-only engines are skipped.
func (f *Facility) save(engine string) error {
	s := f.stores[engine]
	if s.memoryOnly {
		return nil
	}

	start := time.Now()
	err := s.manager.Write(s.encode())
	f.metrics.ObserveSave(engine, time.Since(start))
	if err != nil {
		s.dirty = true
		f.log.Error("Failed to save data file", "engine", engine, "path", s.manager.GetPath(), "error", err)
		return fmt.Errorf("save %s: %w", engine, err)
	}
	if s.dirty {
		f.log.Info("Data file saved after earlier failure", "engine", engine)
	}
	s.dirty = false
	return nil
}

// commit runs after a successful mutation.
func (f *Facility) commit(engine, op string, event journal.EventType, recordID int, detail string) {
	_ = f.save(engine)
	f.appendJournal(event, engine, recordID, detail)
	f.metrics.RecordOperation(engine, op, metrics.ResultOK)
	f.refreshGauges()
}

// reject counts a failed operation.
func (f *Facility) reject(engine, op string, err error) error {
	f.metrics.RecordOperation(engine, op, types.Reason(err))
	f.log.Debug("Operation rejected", "engine", engine, "op", op, "reason", types.Reason(err), "error", err)
	return err
}

func (f *Facility) appendJournal(event journal.EventType, engine string, recordID int, detail string) {
	if f.journal == nil {
		return
	}
	if _, err := f.journal.Append(event, engine, recordID, detail, false); err != nil {
		f.log.Warn("Journal append failed", "type", event, "engine", engine, "error", err)
	}
}

func (f *Facility) refreshGauges() {
	f.metrics.SetRecords(types.EngineAdmission, f.admission.Len())
	f.metrics.SetRecords(types.EngineSupply, f.supply.Len())
	f.metrics.SetRecords(types.EngineDispatch, f.dispatch.Len())
	f.metrics.SetRecords(types.EngineTriage, f.triage.Len())
}

func (f *Facility) ready() error {
	if !f.started || f.closed {
		return ErrNotStarted
	}
	return nil
}

// ============================================================================
// Admission
// ============================================================================

// AdmitPatient adds a patient to the rear of the admission queue.
func (f *Facility) AdmitPatient(name, condition string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return 0, err
	}

	id, err := f.admission.Add(name, condition)
	if err != nil {
		return 0, f.reject(types.EngineAdmission, "add", err)
	}
	f.commit(types.EngineAdmission, "add", journal.EventAdmit, id, name)
	return id, nil
}

// DischargePatient removes the oldest waiting patient.
func (f *Facility) DischargePatient() (types.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.Patient{}, err
	}

	p, err := f.admission.RemoveOldest()
	if err != nil {
		return types.Patient{}, f.reject(types.EngineAdmission, "remove_oldest", err)
	}
	f.commit(types.EngineAdmission, "remove_oldest", journal.EventDischarge, p.ID, p.Name)
	return p, nil
}

// FindPatient returns patient id and its 1-based queue position.
func (f *Facility) FindPatient(id int) (types.Patient, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.Patient{}, 0, err
	}

	p, pos, err := f.admission.FindByID(id)
	if err != nil {
		return types.Patient{}, 0, f.reject(types.EngineAdmission, "find", err)
	}
	f.metrics.RecordOperation(types.EngineAdmission, "find", metrics.ResultOK)
	return p, pos, nil
}

// Patients returns the queue front to rear. Listings are empty unless the
// facility is running.
func (f *Facility) Patients() []types.Patient {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	return f.admission.Snapshot()
}

// ============================================================================
// Supply
// ============================================================================

// AddSupply pushes a batch on top of the stock.
func (f *Facility) AddSupply(name string, quantity int, batch, expiry, notes string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return 0, err
	}

	id, err := f.supply.Push(name, quantity, batch, expiry, notes)
	if err != nil {
		return 0, f.reject(types.EngineSupply, "push", err)
	}
	f.commit(types.EngineSupply, "push", journal.EventPush, id, fmt.Sprintf("%s x%d", name, quantity))
	return id, nil
}

// UseSupply consumes amount units of the top batch and returns what is left
// of it. The batch is removed when it reaches zero.
func (f *Facility) UseSupply(amount int) (types.Supply, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.Supply{}, 0, err
	}

	top, err := f.supply.PeekTop()
	if err != nil {
		return types.Supply{}, 0, f.reject(types.EngineSupply, "consume", err)
	}
	remaining, err := f.supply.ConsumeFromTop(amount)
	if err != nil {
		return types.Supply{}, 0, f.reject(types.EngineSupply, "consume", err)
	}
	f.commit(types.EngineSupply, "consume", journal.EventConsume, top.ID,
		fmt.Sprintf("used=%d remaining=%d", amount, remaining))
	return top, remaining, nil
}

// PeekSupply returns the top batch.
func (f *Facility) PeekSupply() (types.Supply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.Supply{}, err
	}

	top, err := f.supply.PeekTop()
	if err != nil {
		return types.Supply{}, f.reject(types.EngineSupply, "peek", err)
	}
	f.metrics.RecordOperation(types.EngineSupply, "peek", metrics.ResultOK)
	return top, nil
}

// Supplies returns the stock top to bottom.
func (f *Facility) Supplies() []types.Supply {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	return f.supply.Snapshot()
}

// ============================================================================
// Dispatch
// ============================================================================

// RegisterAmbulance adds an ambulance at the end of the rotation.
func (f *Facility) RegisterAmbulance(vehicle, operator, notes string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return 0, err
	}

	id, err := f.dispatch.Register(vehicle, operator, notes)
	if err != nil {
		return 0, f.reject(types.EngineDispatch, "register", err)
	}
	f.commit(types.EngineDispatch, "register", journal.EventRegister, id, vehicle)
	return id, nil
}

// RotateAmbulances hands duty to the next ambulance and returns it.
func (f *Facility) RotateAmbulances() (types.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.Ambulance{}, err
	}

	id, err := f.dispatch.Rotate()
	if err != nil {
		return types.Ambulance{}, f.reject(types.EngineDispatch, "rotate", err)
	}
	head, _ := f.dispatch.Get(id)
	f.commit(types.EngineDispatch, "rotate", journal.EventRotate, id, head.Vehicle)
	return head, nil
}

// AssignShift sets the duty window of ambulance id, in minutes of the day.
func (f *Facility) AssignShift(id, start, end int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}

	if err := f.dispatch.AssignShift(id, start, end); err != nil {
		return f.reject(types.EngineDispatch, "assign_shift", err)
	}
	w := shift.Window{Start: start, End: end}
	f.commit(types.EngineDispatch, "assign_shift", journal.EventAssignShift, id, w.String())
	return nil
}

// RefreshDuty recomputes on-duty flags for the current clock time and
// returns the ambulances now on duty.
func (f *Facility) RefreshDuty() ([]types.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return nil, err
	}

	now := shift.MinuteOfDay(f.now())
	if err := f.dispatch.RefreshDutyStatus(now); err != nil {
		return nil, f.reject(types.EngineDispatch, "refresh_duty", err)
	}
	onDuty := f.dispatch.OnDuty()
	f.commit(types.EngineDispatch, "refresh_duty", journal.EventRefreshDuty, 0,
		fmt.Sprintf("at=%s on_duty=%d", shift.FormatClock(now), len(onDuty)))
	return onDuty, nil
}

// RemoveAmbulance takes ambulance id out of the rotation.
func (f *Facility) RemoveAmbulance(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}

	if err := f.dispatch.Remove(id); err != nil {
		return f.reject(types.EngineDispatch, "remove", err)
	}
	f.commit(types.EngineDispatch, "remove", journal.EventRemove, id, "")
	return nil
}

// Ambulances returns the rotation head to tail.
func (f *Facility) Ambulances() []types.Ambulance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	return f.dispatch.Snapshot()
}

// AmbulancesByShift returns the fleet ordered by shift start.
func (f *Facility) AmbulancesByShift() []types.Ambulance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	return f.dispatch.ByShiftStart()
}

// ============================================================================
// Triage
// ============================================================================

// LogCase records an emergency. A priority of 0 takes the preset priority of
// the category.
func (f *Facility) LogCase(subject, category string, priority int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return 0, err
	}

	if priority == 0 {
		if p, ok := triage.PresetPriority(category); ok {
			priority = p
		}
	}
	id, err := f.triage.Insert(subject, category, priority)
	if err != nil {
		return 0, f.reject(types.EngineTriage, "insert", err)
	}
	f.commit(types.EngineTriage, "insert", journal.EventLogCase, id,
		fmt.Sprintf("%s p%d", category, priority))
	return id, nil
}

// ProcessCase removes and returns the most urgent case.
func (f *Facility) ProcessCase() (types.EmergencyCase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return types.EmergencyCase{}, err
	}

	c, err := f.triage.ExtractMostUrgent()
	if err != nil {
		return types.EmergencyCase{}, f.reject(types.EngineTriage, "extract", err)
	}
	f.commit(types.EngineTriage, "extract", journal.EventProcessCase, c.ID, c.Subject)
	return c, nil
}

// Reprioritize changes the priority of case id.
func (f *Facility) Reprioritize(id, priority int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}

	if err := f.triage.UpdatePriority(id, priority); err != nil {
		return f.reject(types.EngineTriage, "update_priority", err)
	}
	f.commit(types.EngineTriage, "update_priority", journal.EventReprioritize, id,
		fmt.Sprintf("p%d", priority))
	return nil
}

// FindCasesBySubject returns the cases for a subject, ignoring case.
func (f *Facility) FindCasesBySubject(subject string) []types.EmergencyCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	f.metrics.RecordOperation(types.EngineTriage, "find_subject", metrics.ResultOK)
	return f.triage.FindBySubject(subject)
}

// FindCasesByCategory returns the cases in a category, ignoring case.
func (f *Facility) FindCasesByCategory(category string) []types.EmergencyCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	f.metrics.RecordOperation(types.EngineTriage, "find_category", metrics.ResultOK)
	return f.triage.FindByCategory(category)
}

// Cases returns the cases in ascending priority.
func (f *Facility) Cases() []types.EmergencyCase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready() != nil {
		return nil
	}
	return f.triage.Snapshot()
}

// ImportPatients backfills waiting patients into triage with the configured
// import priority. Patients already on the board are left out.
func (f *Facility) ImportPatients() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return 0, err
	}
	return f.importPatientsLocked()
}

func (f *Facility) importPatientsLocked() (int, error) {
	n, err := f.triage.ImportFrom(f.admission.Snapshot(), f.cfg.ImportPriority)
	if err != nil {
		return 0, f.reject(types.EngineTriage, "import", err)
	}
	if n == 0 {
		f.metrics.RecordOperation(types.EngineTriage, "import", metrics.ResultOK)
		return 0, nil
	}
	f.commit(types.EngineTriage, "import", journal.EventImport, 0, fmt.Sprintf("%d patients", n))
	f.log.Info("Imported patients into triage", "count", n, "priority", f.cfg.ImportPriority)
	return n, nil
}

// ============================================================================
// Reporting
// ============================================================================

// EngineStatus summarises one engine.
type EngineStatus struct {
	Engine     string
	Records    int
	Capacity   int // 0 = unbounded
	NextID     int
	File       string
	MemoryOnly bool
	SaveFailed bool
}

// Status is a point-in-time summary of the facility.
type Status struct {
	Engines     []EngineStatus
	SupplyUnits int
	RingState   string
	DutyHead    *types.Ambulance
	MostUrgent  *types.EmergencyCase
	JournalSeq  uint64
	Session     string
}

// Status reports record counts, next ids and file state of every engine.
func (f *Facility) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	engineStatus := func(engine string, records, capacity, nextID int) EngineStatus {
		s := f.stores[engine]
		return EngineStatus{
			Engine:     engine,
			Records:    records,
			Capacity:   capacity,
			NextID:     nextID,
			File:       s.manager.GetPath(),
			MemoryOnly: s.memoryOnly,
			SaveFailed: s.dirty,
		}
	}

	st := Status{
		Engines: []EngineStatus{
			engineStatus(types.EngineAdmission, f.admission.Len(), f.admission.Cap(), f.admission.NextID()),
			engineStatus(types.EngineSupply, f.supply.Len(), 0, f.supply.NextID()),
			engineStatus(types.EngineDispatch, f.dispatch.Len(), 0, f.dispatch.NextID()),
			engineStatus(types.EngineTriage, f.triage.Len(), f.triage.Cap(), f.triage.NextID()),
		},
		SupplyUnits: f.supply.TotalUnits(),
		RingState:   f.dispatch.State().String(),
	}
	if head, err := f.dispatch.Head(); err == nil {
		st.DutyHead = &head
	}
	if cases := f.triage.Snapshot(); len(cases) > 0 {
		st.MostUrgent = &cases[0]
	}
	if f.journal != nil {
		st.JournalSeq = f.journal.GetLastSeq()
		st.Session = f.journal.Session()
	}
	return st
}

// History returns the last limit journal events, oldest first. limit <= 0
// returns everything.
func (f *Facility) History(limit int) ([]journal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ready(); err != nil {
		return nil, err
	}
	if f.journal == nil {
		return nil, ErrJournalDisabled
	}
	var events []journal.Event
	err := f.journal.Replay(func(e journal.Event) error {
		events = append(events, e)
		if limit > 0 && len(events) > limit {
			events = events[1:]
		}
		return nil
	})
	return events, err
}

// WriteMetrics renders the collector in the Prometheus text format.
func (f *Facility) WriteMetrics(w io.Writer) error {
	return f.metrics.WriteText(w)
}

// Metrics returns the collector.
func (f *Facility) Metrics() *metrics.Collector {
	return f.metrics
}
