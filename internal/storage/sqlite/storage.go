// Package sqlite provides a SQLite-backed registry storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
	"github.com/mcoot/dutyledger/internal/storage/sqlite/migrations"
)

// Storage persists the registry in a single SQLite database file
type Storage struct {
	db *sql.DB

	processLogLimit int64
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens the database at path and applies embedded migrations
func Open(path string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &Storage{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures a Storage
type Option func(*Storage)

// WithProcessLogLimit keeps only the newest n process log entries.
// Zero or less keeps every entry.
func WithProcessLogLimit(n int64) Option {
	return func(s *Storage) {
		if n > 0 {
			s.processLogLimit = n
		}
	}
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Person operations

func (s *Storage) CreatePerson(ctx context.Context, person *model.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (id, name, created_at) VALUES (?, ?, ?)`,
		string(person.ID), person.Name, toMillis(person.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPersonExists
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id model.PersonID) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM persons WHERE id = ?`, string(id))
	return scanPerson(row)
}

func (s *Storage) GetPersonByName(ctx context.Context, name string) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM persons WHERE name = ?`, name)
	return scanPerson(row)
}

func (s *Storage) ListPersons(ctx context.Context) ([]*model.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM persons ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	persons := []*model.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}

// Duty record operations

func (s *Storage) AppendDutyRecord(ctx context.Context, record *model.DutyRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO duty_records (id, person_id, rank, duty_title, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)`,
		string(record.ID),
		string(record.PersonID),
		record.Rank,
		record.DutyTitle,
		storage.DateKey(record.StartDate),
		endValue(record.End),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateDuty
		}
		return fmt.Errorf("append duty record: %w", err)
	}
	return nil
}

func (s *Storage) UpdateDutyRecordEnd(ctx context.Context, id model.DutyRecordID, end model.DutyEnd) error {
	result, err := s.db.ExecContext(ctx, `UPDATE duty_records SET end_date = ? WHERE id = ?`, endValue(end), string(id))
	if err != nil {
		return fmt.Errorf("update duty record end: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update duty record end: %w", err)
	}
	if n == 0 {
		return model.ErrDutyRecordNotFound
	}
	return nil
}

func (s *Storage) DeleteDutyRecord(ctx context.Context, id model.DutyRecordID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM duty_records WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete duty record: %w", err)
	}
	return nil
}

func (s *Storage) ListDutyRecords(ctx context.Context, personID model.PersonID) ([]*model.DutyRecord, error) {
	// ISO dates sort lexically in chronological order
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, rank, duty_title, start_date, end_date
		 FROM duty_records WHERE person_id = ? ORDER BY start_date`,
		string(personID),
	)
	if err != nil {
		return nil, fmt.Errorf("list duty records: %w", err)
	}
	defer rows.Close()

	records := []*model.DutyRecord{}
	for rows.Next() {
		var (
			record model.DutyRecord
			id     string
			pid    string
			start  string
			end    sql.NullString
		)
		if err := rows.Scan(&id, &pid, &record.Rank, &record.DutyTitle, &start, &end); err != nil {
			return nil, fmt.Errorf("scan duty record: %w", err)
		}
		record.ID = model.DutyRecordID(id)
		record.PersonID = model.PersonID(pid)
		if record.StartDate, err = civil.ParseDate(start); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		record.End = model.Active()
		if end.Valid {
			d, err := civil.ParseDate(end.String)
			if err != nil {
				return nil, fmt.Errorf("parse end date: %w", err)
			}
			record.End = model.ClosedOn(d)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duty records: %w", err)
	}
	return records, nil
}

// Projection operations

func (s *Storage) SaveProjection(ctx context.Context, projection *model.Projection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projections (person_id, current_rank, current_duty_title, career_start_date, career_end_date)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(person_id) DO UPDATE SET
		   current_rank = excluded.current_rank,
		   current_duty_title = excluded.current_duty_title,
		   career_start_date = excluded.career_start_date,
		   career_end_date = excluded.career_end_date`,
		string(projection.PersonID),
		projection.CurrentRank,
		projection.CurrentDutyTitle,
		dateValue(projection.CareerStartDate),
		dateValue(projection.CareerEndDate),
	)
	if err != nil {
		return fmt.Errorf("save projection: %w", err)
	}
	return nil
}

func (s *Storage) GetProjection(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	var (
		projection model.Projection
		pid        string
		start, end sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT person_id, current_rank, current_duty_title, career_start_date, career_end_date
		 FROM projections WHERE person_id = ?`,
		string(personID),
	).Scan(&pid, &projection.CurrentRank, &projection.CurrentDutyTitle, &start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProjectionNotFound
		}
		return nil, fmt.Errorf("get projection: %w", err)
	}
	projection.PersonID = model.PersonID(pid)
	if projection.CareerStartDate, err = parseNullDate(start); err != nil {
		return nil, err
	}
	if projection.CareerEndDate, err = parseNullDate(end); err != nil {
		return nil, err
	}
	return &projection, nil
}

func (s *Storage) DeleteProjection(ctx context.Context, personID model.PersonID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projections WHERE person_id = ?`, string(personID)); err != nil {
		return fmt.Errorf("delete projection: %w", err)
	}
	return nil
}

// Process log operations

func (s *Storage) AppendProcessLog(ctx context.Context, entry *model.ProcessLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append process log: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO process_logs (id, timestamp, level, message, error, request_path) VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.ID),
		toMillis(entry.Timestamp),
		string(entry.Level),
		entry.Message,
		entry.Error,
		entry.RequestPath,
	)
	if err != nil {
		return fmt.Errorf("append process log: %w", err)
	}

	// seq only grows and trimming removes from the bottom, so the newest
	// rows are exactly those above MAX(seq) - limit
	if s.processLogLimit > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM process_logs WHERE seq <= (SELECT MAX(seq) FROM process_logs) - ?`,
			s.processLogLimit,
		); err != nil {
			return fmt.Errorf("trim process log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append process log: %w", err)
	}
	return nil
}

func (s *Storage) ListProcessLogs(ctx context.Context, limit int) ([]*model.ProcessLog, error) {
	// A negative LIMIT means no limit in SQLite
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, level, message, error, request_path
		 FROM process_logs ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list process logs: %w", err)
	}
	defer rows.Close()

	entries := []*model.ProcessLog{}
	for rows.Next() {
		var (
			entry     model.ProcessLog
			id, level string
			ts        int64
		)
		if err := rows.Scan(&id, &ts, &level, &entry.Message, &entry.Error, &entry.RequestPath); err != nil {
			return nil, fmt.Errorf("scan process log: %w", err)
		}
		entry.ID = model.ProcessLogID(id)
		entry.Timestamp = fromMillis(ts)
		entry.Level = model.ProcessLogLevel(level)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate process logs: %w", err)
	}
	return entries, nil
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*model.Person, error) {
	var (
		id, name  string
		createdAt int64
	)
	if err := row.Scan(&id, &name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPersonNotFound
		}
		return nil, fmt.Errorf("scan person: %w", err)
	}
	return &model.Person{
		ID:        model.PersonID(id),
		Name:      name,
		CreatedAt: fromMillis(createdAt),
	}, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func endValue(end model.DutyEnd) any {
	if d, closed := end.EndDate(); closed {
		return storage.DateKey(d)
	}
	return nil
}

func dateValue(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return storage.DateKey(*d)
}

func parseNullDate(value sql.NullString) (*civil.Date, error) {
	if !value.Valid {
		return nil, nil
	}
	d, err := civil.ParseDate(value.String)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
