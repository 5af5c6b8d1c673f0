// Package snapshot persists entity store state to a sqlite file and restores
// it into a fresh engine.
package snapshot

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/linker/engine"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrSnapshotNotFound is returned when no snapshot has the requested id.
	ErrSnapshotNotFound = errors.New("snapshot: not found")
	// ErrCorruptSnapshot is returned when stored rows disagree with the store
	// invariants, e.g. an entity id that does not match its position.
	ErrCorruptSnapshot = errors.New("snapshot: corrupt")
)

// Snapshot describes one saved store state. Ids is only filled by Load.
type Snapshot struct {
	ID           string
	CreatedAt    time.Time
	Count        int
	Capacity     int
	GrowthEvents int
	Frames       uint64
	Ids          []engine.EntityId
}

// Store is a sqlite-backed snapshot store.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens or creates the database at path and applies pending migrations.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("snapshot store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the current state of e as a new snapshot.
func (s *Store) Save(ctx context.Context, e *engine.Engine) (Snapshot, error) {
	snap := Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Count:        e.Count(),
		Capacity:     e.Capacity(),
		GrowthEvents: e.GrowthEvents(),
		Frames:       e.Scheduler().Frames(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, entity_count, capacity, growth_events, frames)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt.UnixNano(), snap.Count, snap.Capacity, snap.GrowthEvents, int64(snap.Frames))
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_entities (snapshot_id, position, entity_id) VALUES (?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare entities: %w", err)
	}
	defer stmt.Close()

	position := 0
	for entity := range e.Entities() {
		if _, err := stmt.ExecContext(ctx, snap.ID, position, int64(entity.Id)); err != nil {
			return Snapshot{}, fmt.Errorf("insert entity %d: %w", entity.Id, err)
		}
		position++
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit: %w", err)
	}

	s.log.Info("snapshot saved",
		zap.String("id", snap.ID),
		zap.Int("count", snap.Count),
		zap.Int("capacity", snap.Capacity))
	return snap, nil
}

// Load returns the snapshot with the given id, including its entity ids.
func (s *Store) Load(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, entity_count, capacity, growth_events, frames
		 FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, entity_id FROM snapshot_entities
		 WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load entities %s: %w", id, err)
	}
	defer rows.Close()

	snap.Ids = make([]engine.EntityId, 0, snap.Count)
	for rows.Next() {
		var position, entityID int64
		if err := rows.Scan(&position, &entityID); err != nil {
			return Snapshot{}, fmt.Errorf("scan entity: %w", err)
		}
		if position != int64(len(snap.Ids)) {
			return Snapshot{}, fmt.Errorf("%w: %s: missing position %d", ErrCorruptSnapshot, id, len(snap.Ids))
		}
		snap.Ids = append(snap.Ids, engine.EntityId(entityID))
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load entities %s: %w", id, err)
	}
	return snap, nil
}

// List returns all snapshots without their entity ids, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, entity_count, capacity, growth_events, frames
		 FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Restore builds a new engine holding the state of snapshot id. opts supplies
// the logger and capacity limit; the initial capacity comes from the snapshot.
// Count, capacity and ids are restored. GrowthEvents and Frames describe the
// saved run only: the restored engine starts both counters at zero.
func (s *Store) Restore(ctx context.Context, id string, opts engine.Options) (*engine.Engine, error) {
	snap, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(snap.Ids) != snap.Count {
		return nil, fmt.Errorf("%w: %s: %d entity rows, count %d", ErrCorruptSnapshot, id, len(snap.Ids), snap.Count)
	}
	if snap.Count > snap.Capacity {
		return nil, fmt.Errorf("%w: %s: count %d exceeds capacity %d", ErrCorruptSnapshot, id, snap.Count, snap.Capacity)
	}
	for position, entityID := range snap.Ids {
		if entityID.Index() != position {
			return nil, fmt.Errorf("%w: %s: entity %d stored at position %d", ErrCorruptSnapshot, id, entityID, position)
		}
	}

	opts.InitialCapacity = snap.Capacity
	e := engine.NewEngine(opts)
	for range snap.Count {
		if _, err := e.TrySpawn(); err != nil {
			return nil, fmt.Errorf("restore %s: %w", id, err)
		}
	}

	s.log.Info("snapshot restored", zap.String("id", id), zap.Int("count", e.Count()))
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		snap      Snapshot
		createdAt int64
		frames    int64
	)
	if err := row.Scan(&snap.ID, &createdAt, &snap.Count, &snap.Capacity, &snap.GrowthEvents, &frames); err != nil {
		return Snapshot{}, err
	}
	snap.CreatedAt = time.Unix(0, createdAt).UTC()
	snap.Frames = uint64(frames)
	return snap, nil
}
