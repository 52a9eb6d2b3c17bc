// ============================================================================
// Hospital Ops Recovery Test Suite
// ============================================================================
//
// Package: test/integration
// File: recovery_test.go
// Purpose: End-to-end persistence across facility restarts
//
// TestEndToEndRecovery:
//   Drive all four engines, close, start a fresh facility on the same data
//   directory and compare every engine listing and next id.
//
// TestRecoveryWithoutClose:
//   Abandon a facility without Close. Each mutation is written through
//   before the call returns, so nothing may be lost.
//
// TestRecoveryFromDamagedFiles:
//   Hand-edited files with malformed rows, legacy layouts and no header
//   still load; bad rows are skipped and counted.
//
// ============================================================================

package integration

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/hospital-ops/internal/facility"
	"github.com/ChuLiYu/hospital-ops/internal/metrics"
)

func testConfig(dir string) facility.Config {
	cfg := facility.DefaultConfig()
	cfg.DataDir = dir
	cfg.AutoImport = false
	return cfg
}

func start(t testing.TB, cfg facility.Config, opts ...facility.Option) *facility.Facility {
	t.Helper()
	opts = append([]facility.Option{
		facility.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		facility.WithClock(func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }),
	}, opts...)
	f := facility.New(cfg, opts...)
	require.NoError(t, f.Start())
	return f
}

// populate runs a mixed workload over all four engines.
func populate(t *testing.T, f *facility.Facility) {
	t.Helper()
	for i := 1; i <= 20; i++ {
		_, err := f.AdmitPatient(fmt.Sprintf("Patient %d", i), fmt.Sprintf("Condition %d, stable", i))
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := f.DischargePatient()
		require.NoError(t, err)
	}

	for i := 1; i <= 6; i++ {
		_, err := f.AddSupply(fmt.Sprintf("Item %d", i), i*10, fmt.Sprintf("B-%d", i), "2027-06-30", "shelf A, row 2")
		require.NoError(t, err)
	}
	_, _, err := f.UseSupply(60)
	require.NoError(t, err)
	_, _, err = f.UseSupply(7)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err := f.RegisterAmbulance(fmt.Sprintf("AMB-%d", i), fmt.Sprintf("Crew %d", i), "")
		require.NoError(t, err)
	}
	require.NoError(t, f.AssignShift(2, 8*60, 16*60))
	require.NoError(t, f.AssignShift(3, 16*60, 24*60))
	_, err = f.RotateAmbulances()
	require.NoError(t, err)
	require.NoError(t, f.RemoveAmbulance(4))
	_, err = f.RefreshDuty()
	require.NoError(t, err)

	for i, category := range []string{"Severe Burn", "Heart Attack", "Road Accident", "Asthma Attack"} {
		_, err := f.LogCase(fmt.Sprintf("Case %d", i+1), category, 0)
		require.NoError(t, err)
	}
	require.NoError(t, f.Reprioritize(1, 1))
	_, err = f.ProcessCase()
	require.NoError(t, err)
}

func TestEndToEndRecovery(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	// Phase 1: run a workload and shut down cleanly
	f1 := start(t, cfg)
	populate(t, f1)

	patients := f1.Patients()
	supplies := f1.Supplies()
	ambulances := f1.Ambulances()
	cases := f1.Cases()
	status1 := f1.Status()
	require.NoError(t, f1.Close())

	// Phase 2: restart on the same directory
	f2 := start(t, cfg)
	defer f2.Close()

	assert.Equal(t, patients, f2.Patients())
	assert.Equal(t, supplies, f2.Supplies())
	assert.Equal(t, ambulances, f2.Ambulances())
	assert.Equal(t, cases, f2.Cases())

	status2 := f2.Status()
	for i, e := range status2.Engines {
		assert.Equal(t, status1.Engines[i].Records, e.Records, "records of %s", e.Engine)
	}
	assert.Equal(t, status1.JournalSeq, status2.JournalSeq, "journal seq resumes")
	assert.NotEqual(t, status1.Session, status2.Session)

	// ids are never reused after a restart
	id, err := f2.AdmitPatient("Late arrival", "Cough")
	require.NoError(t, err)
	assert.Equal(t, 21, id)
}

func TestRecoveryWithoutClose(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JournalSync = true

	f1 := start(t, cfg)
	populate(t, f1)
	patients := f1.Patients()
	cases := f1.Cases()
	// f1 is abandoned: no Close

	f2 := start(t, cfg)
	defer f2.Close()

	assert.Equal(t, patients, f2.Patients())
	assert.Equal(t, cases, f2.Cases())

	events, err := f2.History(0)
	require.NoError(t, err)
	assert.NotEmpty(t, events, "synced journal events survive an abandoned session")
}

func TestRecoveryFromDamagedFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	// headerless legacy file with a malformed row and a duplicate id
	write("patients.txt", "3,Alice,Fever\nnot-a-row\n\n5,Bob,Chest pain, severe\n3,Carl,Duplicate\n")
	// legacy 4-column ambulance rows
	write("ambulances.txt", "1,AMB-1,Dana,north depot, gate 2\n2,AMB-2,Eli,\n")
	// priority 0 is invalid
	write("emergency.txt", "ID,Subject,Category,Priority\n1,Ann,Sprain,0\n2,Ben,Heart Attack,1\n")

	collector := metrics.NewCollector()
	f := start(t, testConfig(dir), facility.WithMetrics(collector))
	defer f.Close()

	patients := f.Patients()
	require.Len(t, patients, 2)
	assert.Equal(t, "Chest pain, severe", patients[1].Condition)

	ambulances := f.Ambulances()
	require.Len(t, ambulances, 2)
	assert.Equal(t, "north depot, gate 2", ambulances[0].Notes)
	assert.False(t, ambulances[0].OnDuty)

	cases := f.Cases()
	require.Len(t, cases, 1)
	assert.Equal(t, "Ben", cases[0].Subject)

	id, err := f.AdmitPatient("Dee", "Flu")
	require.NoError(t, err)
	assert.Equal(t, 6, id, "next id follows the largest loaded id")

	expected := `
# HELP hospital_load_skipped_rows_total Rows skipped while loading a data file
# TYPE hospital_load_skipped_rows_total counter
hospital_load_skipped_rows_total{engine="admission"} 2
hospital_load_skipped_rows_total{engine="triage"} 1
`
	require.NoError(t, testutil.GatherAndCompare(collector.Registry(),
		strings.NewReader(expected), "hospital_load_skipped_rows_total"))

	// the next save rewrites the files in the current layout
	require.NoError(t, f.Close())
	data, err := os.ReadFile(filepath.Join(dir, "ambulances.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Vehicle,Operator,Notes,ShiftStart,ShiftEnd,OnDuty\n1,AMB-1,Dana,north depot, gate 2,0,0,0\n2,AMB-2,Eli,,0,0,0\n",
		string(data))
}
