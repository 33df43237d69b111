/*
Package sqlite provides a SQLite-backed implementation of the billing collaborators.

PURPOSE:
  Implements the three collaborator interfaces the engine consumes, using
  SQLite. In production the same patterns apply to PostgreSQL with minor
  SQL dialect differences.

INTERFACES IMPLEMENTED:
  billing.BillRepository:  Bill persistence and paginated listing
  billing.UnitDirectory:   Unit fee profiles and labels
  billing.PaymentRecorder: payment_status transitions

KEY TABLES:
  units: Unit directory (label + fee profile)
  bills: Issued bills. amount_due is written once at issuance and never
         updated; payment_status is the only mutable column.

MONEY STORAGE:
  Decimals are stored as TEXT (decimal.String()) so no value ever passes
  through a float. Numeric ordering therefore happens after loading.

DUE STATUS:
  Never stored. A due-status filter is applied in Go with billing.Classify
  against BillFilter.Today after the SQL pre-filter.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/repository.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
)

// Store implements the billing collaborator interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Unit directory
	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		unit_name TEXT NOT NULL,
		building TEXT NOT NULL DEFAULT '',
		base_rent TEXT,
		security_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		amenities_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		maintenance_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Bills (amount_due is immutable after insert)
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		unit_id TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'regular',
		amount_due TEXT NOT NULL,
		months_covered INTEGER NOT NULL DEFAULT 1,
		due_date TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bills_user_due
		ON bills(user_id, due_date);
	CREATE INDEX IF NOT EXISTS idx_bills_unit
		ON bills(unit_id);
	CREATE INDEX IF NOT EXISTS idx_bills_status_due
		ON bills(payment_status, due_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BILL REPOSITORY (billing.BillRepository interface)
// =============================================================================

// Save inserts bills atomically.
func (s *Store) Save(ctx context.Context, bills ...billing.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO bills
		(id, user_id, unit_id, kind, amount_due, months_covered, due_date, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC().Format(time.RFC3339)

	for _, b := range bills {
		createdAt := b.CreatedAt
		if createdAt.IsZero() {
			createdAt = billing.DateOf(time.Now().UTC())
		}
		_, err := sqlTx.ExecContext(ctx, query,
			b.ID, b.UserID, b.UnitID, kindOrDefault(b.Kind),
			b.AmountDue.String(), monthsOrDefault(b.MonthsCovered),
			b.DueDate.String(), statusOrDefault(b.PaymentStatus),
			createdAt.String(), now,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s", billing.ErrDuplicateBill, b.ID)
			}
			return fmt.Errorf("failed to insert bill: %w", err)
		}
	}

	return sqlTx.Commit()
}

// Get returns a single bill.
func (s *Store) Get(ctx context.Context, id billing.BillID) (billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(ctx, id)
}

func (s *Store) getLocked(ctx context.Context, id billing.BillID) (billing.Bill, error) {
	bills, err := s.queryBills(ctx, billSelect+" WHERE id = ?", id)
	if err != nil {
		return billing.Bill{}, err
	}
	if len(bills) == 0 {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	return bills[0], nil
}

// List filters in SQL where it can, then applies the derived due-status
// filter, ordering and pagination in Go.
func (s *Store) List(ctx context.Context, filter billing.BillFilter) (billing.Paginated[billing.Bill], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.UnitID != "" {
		where = append(where, "unit_id = ?")
		args = append(args, filter.UnitID)
	}
	if filter.Year != 0 {
		where = append(where, "due_date >= ? AND due_date <= ?")
		args = append(args, fmt.Sprintf("%04d-01-01", filter.Year), fmt.Sprintf("%04d-12-31", filter.Year))
	}
	if filter.DueStatus == billing.DueStatusPaid {
		where = append(where, "payment_status = ?")
		args = append(args, billing.PaymentPaid)
	} else if filter.DueStatus != "" {
		where = append(where, "payment_status != ?")
		args = append(args, billing.PaymentPaid)
	}

	query := billSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date ASC, id ASC"

	bills, err := s.queryBills(ctx, query, args...)
	if err != nil {
		return billing.Paginated[billing.Bill]{}, err
	}

	matched := bills[:0]
	for _, b := range bills {
		if filter.Matches(b) {
			matched = append(matched, b)
		}
	}
	billing.SortBills(matched, filter.Ordering)
	return billing.Paginate(matched, filter.Page, filter.PageSize), nil
}

const billSelect = `
	SELECT id, user_id, unit_id, kind, amount_due, months_covered, due_date, payment_status, created_at
	FROM bills`

func (s *Store) queryBills(ctx context.Context, query string, args ...any) ([]billing.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []billing.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func scanBill(rows *sql.Rows) (billing.Bill, error) {
	var (
		b         billing.Bill
		amount    string
		dueDate   string
		createdAt string
	)

	err := rows.Scan(
		&b.ID, &b.UserID, &b.UnitID, &b.Kind, &amount,
		&b.MonthsCovered, &dueDate, &b.PaymentStatus, &createdAt,
	)
	if err != nil {
		return b, fmt.Errorf("failed to scan bill: %w", err)
	}

	if b.AmountDue, err = decimal.NewFromString(amount); err != nil {
		return b, fmt.Errorf("bill %s: bad amount_due %q: %w", b.ID, amount, err)
	}
	if b.DueDate, err = billing.ParseDate(dueDate); err != nil {
		return b, fmt.Errorf("bill %s: bad due_date %q: %w", b.ID, dueDate, err)
	}
	if b.CreatedAt, err = billing.ParseDate(createdAt); err != nil {
		return b, fmt.Errorf("bill %s: bad created_at %q: %w", b.ID, createdAt, err)
	}
	return b, nil
}

// =============================================================================
// PAYMENT RECORDER (billing.PaymentRecorder interface)
// =============================================================================

// RecordPaymentStatus updates payment_status only.
func (s *Store) RecordPaymentStatus(ctx context.Context, id billing.BillID, status billing.PaymentStatus) (billing.Bill, error) {
	if !status.Valid() {
		return billing.Bill{}, billing.ErrInvalidPaymentStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET payment_status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return billing.Bill{}, fmt.Errorf("failed to record payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.Bill{}, billing.ErrBillNotFound
	}
	return s.getLocked(ctx, id)
}

// =============================================================================
// UNIT DIRECTORY (billing.UnitDirectory interface)
// =============================================================================

// SaveUnit inserts or replaces a unit record.
func (s *Store) SaveUnit(ctx context.Context, u billing.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO units
		(id, unit_name, building, base_rent, security_enabled, amenities_enabled, maintenance_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			unit_name = excluded.unit_name,
			building = excluded.building,
			base_rent = excluded.base_rent,
			security_enabled = excluded.security_enabled,
			amenities_enabled = excluded.amenities_enabled,
			maintenance_enabled = excluded.maintenance_enabled,
			updated_at = excluded.updated_at
	`

	var baseRent sql.NullString
	if u.Profile.BaseRent.Valid {
		baseRent = sql.NullString{String: u.Profile.BaseRent.Decimal.String(), Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Label.UnitName, u.Label.Building, baseRent,
		u.Profile.SecurityEnabled, u.Profile.AmenitiesEnabled, u.Profile.MaintenanceEnabled,
		now, now,
	)
	return err
}

// Unit returns the full directory record.
func (s *Store) Unit(ctx context.Context, id billing.UnitID) (billing.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units, err := s.queryUnits(ctx, unitSelect+" WHERE id = ?", id)
	if err != nil {
		return billing.Unit{}, err
	}
	if len(units) == 0 {
		return billing.Unit{}, &billing.UnknownUnitError{UnitID: id}
	}
	return units[0], nil
}

// ListUnits returns every unit ordered by building then name.
func (s *Store) ListUnits(ctx context.Context) ([]billing.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUnits(ctx, unitSelect+" ORDER BY building, unit_name")
}

// Profile implements billing.UnitDirectory.
func (s *Store) Profile(ctx context.Context, id billing.UnitID) (billing.UnitFeeProfile, error) {
	u, err := s.Unit(ctx, id)
	return u.Profile, err
}

// Label implements billing.UnitDirectory.
func (s *Store) Label(ctx context.Context, id billing.UnitID) (billing.UnitLabel, error) {
	u, err := s.Unit(ctx, id)
	return u.Label, err
}

const unitSelect = `
	SELECT id, unit_name, building, base_rent, security_enabled, amenities_enabled, maintenance_enabled
	FROM units`

func (s *Store) queryUnits(ctx context.Context, query string, args ...any) ([]billing.Unit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []billing.Unit
	for rows.Next() {
		var (
			u        billing.Unit
			baseRent sql.NullString
		)
		if err := rows.Scan(
			&u.ID, &u.Label.UnitName, &u.Label.Building, &baseRent,
			&u.Profile.SecurityEnabled, &u.Profile.AmenitiesEnabled, &u.Profile.MaintenanceEnabled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		u.Profile.UnitID = u.ID
		if baseRent.Valid {
			d, err := decimal.NewFromString(baseRent.String)
			if err != nil {
				return nil, fmt.Errorf("unit %s: bad base_rent %q: %w", u.ID, baseRent.String, err)
			}
			u.Profile.BaseRent = decimal.NewNullDecimal(d)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for demos and tests).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"bills", "units"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func kindOrDefault(k billing.BillKind) billing.BillKind {
	if k == "" {
		return billing.BillRegular
	}
	return k
}

func statusOrDefault(s billing.PaymentStatus) billing.PaymentStatus {
	if s == "" {
		return billing.PaymentPending
	}
	return s
}

func monthsOrDefault(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
