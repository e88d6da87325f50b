// Package sqlite persists analysis sessions and their per-frame results.
//
// It is an adapter outside the processing core: the layer packages and the
// pipeline never import it. Schema changes ship as embedded golang-migrate
// migrations and are applied by Open.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/form.report/internal/monitoring"
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"github.com/banshee-data/form.report/internal/pose/l6assessment"
	"github.com/banshee-data/form.report/internal/pose/pipeline"
	"github.com/banshee-data/form.report/internal/timeutil"
	"github.com/banshee-data/form.report/internal/version"
)

// Session is one recorded analysis run.
type Session struct {
	SessionID   string          `json:"session_id"`
	Exercise    exercise.Config `json:"exercise"`
	AppVersion  string          `json:"app_version"`
	GitSHA      string          `json:"git_sha"`
	StartedAt   time.Time       `json:"started_at"`
	ResultCount int             `json:"result_count"`
}

// ResultRecord is the persisted summary of one AnalysisResult.
type ResultRecord struct {
	SessionID  string                         `json:"session_id"`
	FrameIndex int                            `json:"frame_index"`
	Timestamp  float64                        `json:"timestamp"`
	Phase      l4phase.Phase                  `json:"phase"`
	Overall    float64                        `json:"overall_quality"`
	Quality    l6assessment.ExerciseQuality   `json:"quality"`
	Activation l5activation.Activation        `json:"activation"`
	Angles     map[l2geometry.AngleID]float64 `json:"angles"`
	Errors     []l6assessment.ExerciseError   `json:"errors"`
}

// Store provides persistence for sessions and results.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the database at path and migrates it to the
// latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	s, err := NewStore(db, timeutil.RealClock{})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an open database and migrates it. The clock stamps
// session start times.
func NewStore(db *sql.DB, clock timeutil.Clock) (*Store, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	s := &Store{db: db, clock: clock}
	if err := s.MigrateUp(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession records a new session and returns its ID.
func (s *Store) StartSession(cfg exercise.Config) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, exercise_type, training_mode, app_version, git_sha, started_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(cfg.Type), string(cfg.Mode), version.Version, version.GitSHA, s.clock.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// RecordResult stores one analysis result under a session.
func (s *Store) RecordResult(sessionID string, frameIndex int, r pipeline.AnalysisResult) error {
	angles := map[l2geometry.AngleID]float64{}
	if r.Pose != nil {
		for id, v := range r.Pose.Angles {
			angles[id] = v
		}
	}
	errs := r.Errors
	if errs == nil {
		errs = []l6assessment.ExerciseError{}
	}
	act := r.MuscleActivation
	if act == nil {
		act = l5activation.Activation{}
	}

	qualityJSON, err := json.Marshal(r.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}
	actJSON, err := json.Marshal(act)
	if err != nil {
		return fmt.Errorf("marshal activation: %w", err)
	}
	anglesJSON, err := json.Marshal(angles)
	if err != nil {
		return fmt.Errorf("marshal angles: %w", err)
	}
	errsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO analysis_results (
			session_id, frame_index, timestamp, phase, overall_quality,
			quality_json, activation_json, angles_json, errors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, frameIndex, r.Timestamp, string(r.Phase), r.Overall(),
		string(qualityJSON), string(actJSON), string(anglesJSON), string(errsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert result %d for session %s: %w", frameIndex, sessionID, err)
	}
	return nil
}

// Results returns a session's results ordered by frame index.
func (s *Store) Results(sessionID string) ([]ResultRecord, error) {
	rows, err := s.db.Query(`
		SELECT session_id, frame_index, timestamp, phase, overall_quality,
		       quality_json, activation_json, angles_json, errors_json
		FROM analysis_results
		WHERE session_id = ?
		ORDER BY frame_index ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Sessions returns every session, newest first, with its result count.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT s.session_id, s.exercise_type, s.training_mode, s.app_version, s.git_sha,
		       s.started_at_ns, COUNT(r.frame_index)
		FROM sessions s
		LEFT JOIN analysis_results r ON r.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.started_at_ns DESC, s.session_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var exType, mode string
		var startedNs int64
		if err := rows.Scan(&sess.SessionID, &exType, &mode, &sess.AppVersion, &sess.GitSHA, &startedNs, &sess.ResultCount); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sess.Exercise = exercise.Config{Type: exercise.Type(exType), Mode: exercise.TrainingMode(mode)}
		sess.StartedAt = time.Unix(0, startedNs).UTC()
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and, by cascade, its results.
func (s *Store) DeleteSession(sessionID string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

func scanResult(rows *sql.Rows) (ResultRecord, error) {
	var rec ResultRecord
	var phase, qualityJSON, actJSON, anglesJSON, errsJSON string
	err := rows.Scan(
		&rec.SessionID, &rec.FrameIndex, &rec.Timestamp, &phase, &rec.Overall,
		&qualityJSON, &actJSON, &anglesJSON, &errsJSON,
	)
	if err != nil {
		return rec, fmt.Errorf("scan result row: %w", err)
	}
	rec.Phase = l4phase.Phase(phase)
	if err := json.Unmarshal([]byte(qualityJSON), &rec.Quality); err != nil {
		return rec, fmt.Errorf("decode quality: %w", err)
	}
	if err := json.Unmarshal([]byte(actJSON), &rec.Activation); err != nil {
		return rec, fmt.Errorf("decode activation: %w", err)
	}
	if err := json.Unmarshal([]byte(anglesJSON), &rec.Angles); err != nil {
		return rec, fmt.Errorf("decode angles: %w", err)
	}
	if err := json.Unmarshal([]byte(errsJSON), &rec.Errors); err != nil {
		return rec, fmt.Errorf("decode errors: %w", err)
	}
	return rec, nil
}

// SessionSink records every result it receives under one session. It
// implements pipeline.ResultSink; write failures are logged and counted
// rather than interrupting the runner.
type SessionSink struct {
	store     *Store
	sessionID string

	mu       sync.Mutex
	next     int
	failures int
	firstErr error
}

// Sink returns a result sink bound to sessionID. Frame indexes start at 0.
func (s *Store) Sink(sessionID string) *SessionSink {
	return &SessionSink{store: s, sessionID: sessionID}
}

// HandleResult implements pipeline.ResultSink.
func (k *SessionSink) HandleResult(r pipeline.AnalysisResult) {
	k.mu.Lock()
	defer k.mu.Unlock()
	idx := k.next
	k.next++
	if err := k.store.RecordResult(k.sessionID, idx, r); err != nil {
		k.failures++
		if k.firstErr == nil {
			k.firstErr = err
		}
		monitoring.Logf("[storage] failed to record result %d: %v", idx, err)
	}
}

// Recorded returns how many results were successfully written.
func (k *SessionSink) Recorded() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.next - k.failures
}

// Err returns the first write error, if any.
func (k *SessionSink) Err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.firstErr
}
