// Package results provides SQLite-based storage for scattering runs: the scatterer
// and its efficiencies, efficiency sweeps and amplitude curves.
package results

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/bob-anderson-ok/CylinderScattering/curves"
	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
)

// ErrNotFound is returned when a run id is not in the store.
var ErrNotFound = errors.New("run not found")

// Store wraps a SQLite connection holding scattering results.
type Store struct {
	conn *sqlx.DB
}

// Run is one stored scattering evaluation.
type Run struct {
	ID         string  `db:"id"`
	Title      string  `db:"title"`
	CreatedAt  string  `db:"created_at"`
	Diameter   float64 `db:"diameter"`
	Wavelength float64 `db:"wavelength"`
	Index      float64 `db:"particle_index"`
	NMedium    float64 `db:"medium_index"`
	Extinction string  `db:"extinction_rule"`
	Qsca       float64 `db:"qsca"`
	Qext       float64 `db:"qext"`
	Qabs       float64 `db:"qabs"`
}

// Scatterer returns the scatterer the run was computed for.
func (r Run) Scatterer() cylinder.Scatterer {
	return cylinder.Scatterer{
		Diameter:   r.Diameter,
		Wavelength: r.Wavelength,
		Index:      r.Index,
		NMedium:    r.NMedium,
	}
}

type sweepRow struct {
	Diameter float64 `db:"diameter"`
	Qsca     float64 `db:"qsca"`
	Qext     float64 `db:"qext"`
	Qabs     float64 `db:"qabs"`
}

type amplitudeRow struct {
	Phi  float64 `db:"phi"`
	S1Re float64 `db:"s1_re"`
	S1Im float64 `db:"s1_im"`
	S2Re float64 `db:"s2_re"`
	S2Im float64 `db:"s2_im"`
	SPF  float64 `db:"spf"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL,
		diameter REAL NOT NULL,
		wavelength REAL NOT NULL,
		particle_index REAL NOT NULL,
		medium_index REAL NOT NULL,
		extinction_rule TEXT NOT NULL,
		qsca REAL NOT NULL,
		qext REAL NOT NULL,
		qabs REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sweep_points (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		diameter REAL NOT NULL,
		qsca REAL NOT NULL,
		qext REAL NOT NULL,
		qabs REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS amplitudes (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		phi REAL NOT NULL,
		s1_re REAL NOT NULL,
		s1_im REAL NOT NULL,
		s2_re REAL NOT NULL,
		s2_im REAL NOT NULL,
		spf REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := st.conn.Exec(schema)
	return err
}

// SaveRun stores a scatterer with its efficiencies and returns the new run id.
func (st *Store) SaveRun(title string, s cylinder.Scatterer, rule cylinder.ExtinctionRule, q cylinder.Efficiencies) (string, error) {
	run := Run{
		ID:         uuid.NewString(),
		Title:      title,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		Diameter:   s.Diameter,
		Wavelength: s.Wavelength,
		Index:      s.Index,
		NMedium:    s.NMedium,
		Extinction: rule.String(),
		Qsca:       q.Qsca,
		Qext:       q.Qext,
		Qabs:       q.Qabs,
	}

	_, err := st.conn.NamedExec(`INSERT INTO runs
		(id, title, created_at, diameter, wavelength, particle_index, medium_index,
		 extinction_rule, qsca, qext, qabs)
		VALUES (:id, :title, :created_at, :diameter, :wavelength, :particle_index, :medium_index,
		 :extinction_rule, :qsca, :qext, :qabs)`, run)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	slog.Info("run saved", "id", run.ID, "title", title, "qsca", q.Qsca)
	return run.ID, nil
}

// Run retrieves a stored run.
func (st *Store) Run(id string) (Run, error) {
	var run Run
	err := st.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// Runs returns every stored run, oldest first.
func (st *Store) Runs() ([]Run, error) {
	var runs []Run
	err := st.conn.Select(&runs, "SELECT * FROM runs ORDER BY created_at, id")
	return runs, err
}

// SaveSweep writes the sweep points of a run (full replace).
func (st *Store) SaveSweep(runID string, points []curves.EfficiencyPoint) error {
	if err := st.exists(runID); err != nil {
		return err
	}

	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sweep_points WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO sweep_points
		(run_id, seq, diameter, qsca, qext, qabs)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, pt := range points {
		if _, err := stmt.Exec(runID, i, pt.Diameter, pt.Qsca, pt.Qext, pt.Qabs); err != nil {
			return fmt.Errorf("insert sweep point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("sweep saved", "run", runID, "points", len(points))
	return nil
}

// Sweep returns the sweep points of a run in diameter order.
func (st *Store) Sweep(runID string) ([]curves.EfficiencyPoint, error) {
	var rows []sweepRow
	err := st.conn.Select(&rows,
		"SELECT diameter, qsca, qext, qabs FROM sweep_points WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, err
	}

	points := make([]curves.EfficiencyPoint, len(rows))
	for i, r := range rows {
		points[i] = curves.EfficiencyPoint{
			Diameter:     r.Diameter,
			Efficiencies: cylinder.Efficiencies{Qsca: r.Qsca, Qext: r.Qext, Qabs: r.Qabs},
		}
	}
	return points, nil
}

// SaveAmplitudes writes the amplitude curve of a run (full replace).
func (st *Store) SaveAmplitudes(runID string, curve []curves.AnglePoint) error {
	if err := st.exists(runID); err != nil {
		return err
	}

	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM amplitudes WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO amplitudes
		(run_id, seq, phi, s1_re, s1_im, s2_re, s2_im, spf)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, pt := range curve {
		_, err := stmt.Exec(runID, i, pt.Phi,
			real(pt.S1), imag(pt.S1), real(pt.S2), imag(pt.S2), pt.SPF)
		if err != nil {
			return fmt.Errorf("insert amplitude %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("amplitudes saved", "run", runID, "points", len(curve))
	return nil
}

// Amplitudes returns the amplitude curve of a run in angle order.
func (st *Store) Amplitudes(runID string) ([]curves.AnglePoint, error) {
	var rows []amplitudeRow
	err := st.conn.Select(&rows,
		"SELECT phi, s1_re, s1_im, s2_re, s2_im, spf FROM amplitudes WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, err
	}

	curve := make([]curves.AnglePoint, len(rows))
	for i, r := range rows {
		curve[i] = curves.AnglePoint{
			Phi: r.Phi,
			S1:  complex(r.S1Re, r.S1Im),
			S2:  complex(r.S2Re, r.S2Im),
			SPF: r.SPF,
		}
	}
	return curve, nil
}

func (st *Store) exists(runID string) error {
	var n int
	if err := st.conn.Get(&n, "SELECT COUNT(*) FROM runs WHERE id = ?", runID); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}
