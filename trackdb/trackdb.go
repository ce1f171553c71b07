// Package trackdb persists the track history of labeling sessions in a
// SQLite database, so records of several runs over the same sequence can be
// kept side by side and queried per track.
package trackdb

import (
	"context"
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/annotation"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSessionNotFound is returned when a session id has no stored rows
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo describes a stored session
type SessionInfo struct {
	ID     uuid.UUID
	Source string
	Tracks int
}

// DB is a track history database
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies any pending schema
// migrations
func Open(ctx context.Context, path string) (*DB, error) {

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, errors.Wrapf(err, "error opening track database %s", path)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error setting busy timeout")
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// migrateUp applies the embedded migrations, an up to date schema is not an
// error
func migrateUp(db *sql.DB) error {

	src, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return errors.Wrap(err, "error loading migrations")
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})

	if err != nil {
		return errors.Wrap(err, "error creating sqlite migration driver")
	}

	// m is not closed as that would close db
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)

	if err != nil {
		return errors.Wrap(err, "error creating migrate instance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}

	return nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveSession replaces every stored record of the session with recs in one
// transaction.  Record order is preserved.
func (d *DB) SaveSession(ctx context.Context, id uuid.UUID, source string, recs []annotation.TrackRecord) error {

	tx, err := d.db.BeginTx(ctx, nil)

	if err != nil {
		return errors.Wrap(err, "error starting transaction")
	}

	defer tx.Rollback()

	key := id.String()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE session_id = ?`, key); err != nil {
		return errors.Wrap(err, "error clearing session tracks")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, source) VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET source = excluded.source, saved_at = CURRENT_TIMESTAMP`,
		key, source); err != nil {
		return errors.Wrap(err, "error saving session")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (session_id, frame, track_id, xmin, ymin, width, height, confidence, x, y, z, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return errors.Wrap(err, "error preparing track insert")
	}

	defer stmt.Close()

	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx, key, r.Frame, r.TrackID, r.XMin, r.YMin,
			r.Width, r.Height, r.Confidence, r.X, r.Y, r.Z, i); err != nil {
			return errors.Wrapf(err, "error inserting record %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "error committing session")
}

// Sessions lists the stored sessions, most recently saved first
func (d *DB) Sessions(ctx context.Context) ([]SessionInfo, error) {

	rows, err := d.db.QueryContext(ctx, `
		SELECT s.session_id, s.source, COUNT(t.seq)
		FROM sessions s LEFT JOIN tracks t ON t.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.saved_at DESC, s.session_id`)

	if err != nil {
		return nil, errors.Wrap(err, "error listing sessions")
	}

	defer rows.Close()

	var out []SessionInfo

	for rows.Next() {
		var (
			info SessionInfo
			key  string
		)

		if err := rows.Scan(&key, &info.Source, &info.Tracks); err != nil {
			return nil, errors.Wrap(err, "error scanning session")
		}

		if info.ID, err = uuid.Parse(key); err != nil {
			return nil, errors.Wrapf(err, "bad session id %q", key)
		}

		out = append(out, info)
	}

	return out, errors.Wrap(rows.Err(), "error listing sessions")
}

// Session returns the records of a session in frame order, records of one
// frame keep their saved order
func (d *DB) Session(ctx context.Context, id uuid.UUID) ([]annotation.TrackRecord, error) {

	if err := d.exists(ctx, id); err != nil {
		return nil, err
	}

	return d.query(ctx, `
		SELECT frame, track_id, xmin, ymin, width, height, confidence, x, y, z
		FROM tracks WHERE session_id = ? ORDER BY frame, seq`, id.String())
}

// Track returns the records of one track of a session in frame order
func (d *DB) Track(ctx context.Context, id uuid.UUID, trackID int) ([]annotation.TrackRecord, error) {

	if err := d.exists(ctx, id); err != nil {
		return nil, err
	}

	return d.query(ctx, `
		SELECT frame, track_id, xmin, ymin, width, height, confidence, x, y, z
		FROM tracks WHERE session_id = ? AND track_id = ? ORDER BY frame, seq`,
		id.String(), trackID)
}

func (d *DB) exists(ctx context.Context, id uuid.UUID) error {

	var n int

	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE session_id = ?`,
		id.String()).Scan(&n)

	if err != nil {
		return errors.Wrap(err, "error looking up session")
	}

	if n == 0 {
		return errors.Wrapf(ErrSessionNotFound, "session %s", id)
	}

	return nil
}

func (d *DB) query(ctx context.Context, q string, args ...any) ([]annotation.TrackRecord, error) {

	rows, err := d.db.QueryContext(ctx, q, args...)

	if err != nil {
		return nil, errors.Wrap(err, "error querying tracks")
	}

	defer rows.Close()

	var out []annotation.TrackRecord

	for rows.Next() {
		var r annotation.TrackRecord

		if err := rows.Scan(&r.Frame, &r.TrackID, &r.XMin, &r.YMin, &r.Width, &r.Height,
			&r.Confidence, &r.X, &r.Y, &r.Z); err != nil {
			return nil, errors.Wrap(err, "error scanning track")
		}

		out = append(out, r)
	}

	return out, errors.Wrap(rows.Err(), "error reading tracks")
}
