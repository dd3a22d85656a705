// Package store persists interview sessions and generated reports in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hollowaylabs/interviewkit/interview"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store provides read-write access to the interview database.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		room_name TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at REAL NOT NULL,
		ended_at REAL,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		room_name TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		created_at REAL NOT NULL,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_room ON reports(room_name);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
`

// Open opens (or creates) the database at path with WAL, creating the schema
// when missing. Pass ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession upserts the session snapshot keyed by room name.
func (s *Store) SaveSession(data interview.SessionData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var endedAt sql.NullFloat64
	if data.Metadata.EndedAt != nil {
		endedAt = sql.NullFloat64{Float64: unixFloat(*data.Metadata.EndedAt), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (room_name, mode, started_at, ended_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(room_name) DO UPDATE SET
			mode = excluded.mode,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			data = excluded.data
	`, data.Metadata.RoomName, string(data.Metadata.Mode), unixFloat(data.Metadata.StartedAt), endedAt, string(blob))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession returns the session snapshot for a room.
func (s *Store) GetSession(roomName string) (interview.SessionData, error) {
	var blob string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE room_name = ?`, roomName).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interview.SessionData{}, ErrNotFound
		}
		return interview.SessionData{}, fmt.Errorf("query session: %w", err)
	}

	var data interview.SessionData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return interview.SessionData{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return data, nil
}

// SaveReport stores a generated report for a room.
func (s *Store) SaveReport(roomName string, report interview.InterviewReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	createdAt := time.Now()
	if t, err := time.Parse(time.RFC3339, report.Date); err == nil {
		createdAt = t
	}

	_, err = s.db.Exec(`
		INSERT INTO reports (id, room_name, overall_score, created_at, report)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_name = excluded.room_name,
			overall_score = excluded.overall_score,
			created_at = excluded.created_at,
			report = excluded.report
	`, report.ID, roomName, report.OverallScore, unixFloat(createdAt), string(blob))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// GetReport returns a report by ID.
func (s *Store) GetReport(id string) (interview.InterviewReport, error) {
	var blob string
	err := s.db.QueryRow(`SELECT report FROM reports WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interview.InterviewReport{}, ErrNotFound
		}
		return interview.InterviewReport{}, fmt.Errorf("query report: %w", err)
	}

	var report interview.InterviewReport
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return interview.InterviewReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}

// ReportSummary is one row of the report listing.
type ReportSummary struct {
	ID           string    `json:"id"`
	RoomName     string    `json:"roomName"`
	OverallScore int       `json:"overallScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListReports returns report summaries, newest first. limit <= 0 lists all.
func (s *Store) ListReports(limit int) ([]ReportSummary, error) {
	query := `
		SELECT id, room_name, overall_score, created_at
		FROM reports
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		var createdAt float64
		if err := rows.Scan(&r.ID, &r.RoomName, &r.OverallScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.CreatedAt = timeFromUnix(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
