package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/ringside-hq/ringside/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// Store implements domain.Store using SQLite: one polymorphic entities
// table and one periods table keyed by (owner_type, owner_id, kind).
// Partial unique indexes back up the one-open-period invariant that
// OpenPeriod checks at write time; OpenPeriod, ReschedulePeriod and the
// close methods also reject writes that would make periods of one kind
// overlap or run backwards.
type Store struct {
	db *sql.DB
	tx *sql.Tx
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers (and keeps ":memory:" tests on
	// one database).
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready store. Use this when the *sql.DB has been pre-configured
// (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// dbtx is the subset of *sql.DB and *sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn() dbtx {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// WithTx runs fn inside a single transaction; a nested call joins the
// enclosing transaction instead of opening a second one.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&Store{db: s.db, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

// --- Entities ---

func (s *Store) CreateEntity(ctx context.Context, e domain.Entity) error {
	_, err := s.conn().ExecContext(ctx,
		`INSERT INTO entities (id, type, name, hometown, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Name, e.Hometown, string(e.Status),
		e.CreatedAt.Format(timeFormat),
		e.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.NameConflictError{Type: e.Type, Name: e.Name}
		}
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, id string) (domain.Entity, error) {
	return scanEntity(s.conn().QueryRowContext(ctx,
		`SELECT id, type, name, hometown, status, created_at, updated_at
		 FROM entities WHERE id = ?`, id,
	))
}

func (s *Store) ListEntities(ctx context.Context, filter domain.ListFilter) ([]domain.Entity, error) {
	query := `SELECT id, type, name, hometown, status, created_at, updated_at FROM entities`
	var conds []string
	var args []any

	if filter.Type != nil {
		conds = append(conds, `type = ?`)
		args = append(args, string(*filter.Type))
	}
	if filter.Status != nil {
		conds = append(conds, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	query += ` ORDER BY name ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		e, err := scanEntityFromRows(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}

func (s *Store) UpdateEntity(ctx context.Context, e domain.Entity) error {
	result, err := s.conn().ExecContext(ctx,
		`UPDATE entities SET name = ?, hometown = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.Hometown, string(e.Status),
		e.UpdatedAt.Format(timeFormat), e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.NameConflictError{Type: e.Type, Name: e.Name}
		}
		return fmt.Errorf("updating entity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrEntityNotFound
	}

	return nil
}

func scanEntity(row *sql.Row) (domain.Entity, error) {
	var e domain.Entity
	var typ, status, createdAt, updatedAt string

	err := row.Scan(&e.ID, &typ, &e.Name, &e.Hometown, &status, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Entity{}, domain.ErrEntityNotFound
		}
		return domain.Entity{}, fmt.Errorf("scanning entity: %w", err)
	}

	e.Type = domain.EntityType(typ)
	e.Status = domain.Status(status)
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	e.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return e, nil
}

func scanEntityFromRows(rows *sql.Rows) (domain.Entity, error) {
	var e domain.Entity
	var typ, status, createdAt, updatedAt string

	err := rows.Scan(&e.ID, &typ, &e.Name, &e.Hometown, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("scanning entity row: %w", err)
	}

	e.Type = domain.EntityType(typ)
	e.Status = domain.Status(status)
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	e.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return e, nil
}

// --- Periods ---

const periodColumns = `id, owner_type, owner_id, kind, counterpart_type, counterpart_id, started_at, ended_at`

func (s *Store) OpenPeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, startedAt time.Time, counterpart *domain.EntityRef) (domain.Period, error) {
	// Write-time guard for the one-open-period invariant; the partial
	// unique index is the backstop.
	query := `SELECT COUNT(*) FROM periods
	          WHERE owner_type = ? AND owner_id = ? AND kind = ? AND ended_at IS NULL`
	args := []any{string(owner.Type), owner.ID, string(kind)}
	if kind.KeyedByCounterpart() {
		if counterpart == nil {
			return domain.Period{}, fmt.Errorf("opening %s period: counterpart required", kind)
		}
		query += ` AND counterpart_type = ? AND counterpart_id = ?`
		args = append(args, string(counterpart.Type), counterpart.ID)
	}

	var count int
	if err := s.conn().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return domain.Period{}, fmt.Errorf("checking open periods: %w", err)
	}
	if count > 0 {
		if kind.Membership() {
			return domain.Period{}, &domain.AmbiguousMemberError{Member: owner, Kind: kind}
		}
		return domain.Period{}, &domain.OpenPeriodExistsError{Owner: owner, Kind: kind}
	}

	overlap, err := s.overlaps(ctx, owner, kind, counterpart, startedAt, "")
	if err != nil {
		return domain.Period{}, err
	}
	if overlap {
		return domain.Period{}, &domain.PeriodOverlapError{Owner: owner, Kind: kind}
	}

	p := domain.Period{
		ID:          uuid.NewString(),
		Owner:       owner,
		Kind:        kind,
		Counterpart: counterpart,
		StartedAt:   startedAt,
	}

	var cpType, cpID any
	if counterpart != nil {
		cpType, cpID = string(counterpart.Type), counterpart.ID
	}

	_, err = s.conn().ExecContext(ctx,
		`INSERT INTO periods (id, owner_type, owner_id, kind, counterpart_type, counterpart_id, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		p.ID, string(owner.Type), owner.ID, string(kind), cpType, cpID,
		startedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Period{}, &domain.OpenPeriodExistsError{Owner: owner, Kind: kind}
		}
		return domain.Period{}, fmt.Errorf("inserting period: %w", err)
	}

	return p, nil
}

func (s *Store) ClosePeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, endedAt time.Time) (domain.Period, error) {
	open, err := s.FindOpen(ctx, owner, kind)
	if err != nil {
		return domain.Period{}, err
	}
	if open == nil {
		return domain.Period{}, &domain.NoOpenPeriodError{Owner: owner, Kind: kind}
	}

	return s.closeByID(ctx, *open, endedAt)
}

func (s *Store) ClosePeriodFor(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, counterpart domain.EntityRef, endedAt time.Time) (domain.Period, error) {
	row := s.conn().QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ? AND kind = ?
		   AND counterpart_type = ? AND counterpart_id = ? AND ended_at IS NULL`,
		string(owner.Type), owner.ID, string(kind),
		string(counterpart.Type), counterpart.ID,
	)

	open, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Period{}, &domain.NoOpenPeriodError{Owner: owner, Kind: kind}
		}
		return domain.Period{}, err
	}

	return s.closeByID(ctx, open, endedAt)
}

func (s *Store) closeByID(ctx context.Context, p domain.Period, endedAt time.Time) (domain.Period, error) {
	if endedAt.Before(p.StartedAt) {
		return domain.Period{}, &domain.PeriodBoundsError{Owner: p.Owner, Kind: p.Kind}
	}

	_, err := s.conn().ExecContext(ctx,
		`UPDATE periods SET ended_at = ? WHERE id = ?`,
		endedAt.Format(timeFormat), p.ID,
	)
	if err != nil {
		return domain.Period{}, fmt.Errorf("closing period: %w", err)
	}

	ended := endedAt
	p.EndedAt = &ended
	return p, nil
}

func (s *Store) FindOpen(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind) (*domain.Period, error) {
	row := s.conn().QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ? AND kind = ? AND ended_at IS NULL`,
		string(owner.Type), owner.ID, string(kind),
	)

	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CurrentPeriod(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, asOf time.Time) (*domain.Period, error) {
	row := s.conn().QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ? AND kind = ?
		   AND started_at <= ? AND (ended_at IS NULL OR ended_at > ?)
		 ORDER BY started_at DESC LIMIT 1`,
		string(owner.Type), owner.ID, string(kind),
		asOf.Format(timeFormat), asOf.Format(timeFormat),
	)

	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) Periods(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind) ([]domain.Period, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ? AND kind = ?
		 ORDER BY started_at ASC`,
		string(owner.Type), owner.ID, string(kind),
	)
}

func (s *Store) PeriodsBetween(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, from, to time.Time) ([]domain.Period, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ? AND kind = ?
		   AND started_at < ? AND (ended_at IS NULL OR ended_at > ?)
		 ORDER BY started_at ASC`,
		string(owner.Type), owner.ID, string(kind),
		to.Format(timeFormat), from.Format(timeFormat),
	)
}

func (s *Store) History(ctx context.Context, owner domain.EntityRef) ([]domain.Period, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE owner_type = ? AND owner_id = ?
		 ORDER BY started_at ASC`,
		string(owner.Type), owner.ID,
	)
}

func (s *Store) OpenPeriodsByCounterpart(ctx context.Context, counterpart domain.EntityRef, kind domain.PeriodKind) ([]domain.Period, error) {
	return s.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM periods
		 WHERE counterpart_type = ? AND counterpart_id = ? AND kind = ? AND ended_at IS NULL
		 ORDER BY started_at ASC`,
		string(counterpart.Type), counterpart.ID, string(kind),
	)
}

func (s *Store) ReschedulePeriod(ctx context.Context, id string, startedAt time.Time) error {
	row := s.conn().QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM periods WHERE id = ?`, id,
	)

	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEntityNotFound
		}
		return err
	}

	overlap, err := s.overlaps(ctx, p.Owner, p.Kind, p.Counterpart, startedAt, p.ID)
	if err != nil {
		return err
	}
	if overlap {
		return &domain.PeriodOverlapError{Owner: p.Owner, Kind: p.Kind}
	}

	if _, err := s.conn().ExecContext(ctx,
		`UPDATE periods SET started_at = ? WHERE id = ?`,
		startedAt.Format(timeFormat), p.ID,
	); err != nil {
		return fmt.Errorf("rescheduling period: %w", err)
	}

	return nil
}

// overlaps reports whether a closed period of the same kind covers any
// instant at or after startedAt. A period being opened or re-dated has no
// end yet, so it collides with exactly the closed rows ending after its
// start; the one-open-period guard accounts for the open row.
func (s *Store) overlaps(ctx context.Context, owner domain.EntityRef, kind domain.PeriodKind, counterpart *domain.EntityRef, startedAt time.Time, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM periods
	          WHERE owner_type = ? AND owner_id = ? AND kind = ?
	            AND ended_at IS NOT NULL AND ended_at > ?`
	args := []any{string(owner.Type), owner.ID, string(kind), startedAt.Format(timeFormat)}
	if kind.KeyedByCounterpart() && counterpart != nil {
		query += ` AND counterpart_type = ? AND counterpart_id = ?`
		args = append(args, string(counterpart.Type), counterpart.ID)
	}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	var count int
	if err := s.conn().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking period overlap: %w", err)
	}
	return count > 0, nil
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]domain.Period, error) {
	rows, err := s.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	return periods, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row scanner) (domain.Period, error) {
	var p domain.Period
	var ownerType, kind, startedAt string
	var cpType, cpID, endedAt sql.NullString

	err := row.Scan(&p.ID, &ownerType, &p.Owner.ID, &kind, &cpType, &cpID, &startedAt, &endedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Period{}, err
		}
		return domain.Period{}, fmt.Errorf("scanning period: %w", err)
	}

	p.Owner.Type = domain.EntityType(ownerType)
	p.Kind = domain.PeriodKind(kind)
	p.StartedAt, _ = time.Parse(timeFormat, startedAt)

	if cpID.Valid {
		ref := domain.EntityRef{Type: domain.EntityType(cpType.String), ID: cpID.String}
		p.Counterpart = &ref
	}
	if endedAt.Valid {
		t, _ := time.Parse(timeFormat, endedAt.String)
		p.EndedAt = &t
	}

	return p, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
