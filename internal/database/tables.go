package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

const tableColumns = `id, floor_id, table_number, size, seats, status,
    occupied_since, available_in_minutes, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*models.Table, error) {
	var t models.Table
	var occupiedSince sql.NullTime
	var availableIn sql.NullInt64
	err := row.Scan(
		&t.ID, &t.FloorID, &t.TableNumber, &t.Size, &t.Seats, &t.Status,
		&occupiedSince, &availableIn, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if occupiedSince.Valid {
		t.OccupiedSince = &occupiedSince.Time
	}
	if availableIn.Valid {
		mins := int(availableIn.Int64)
		t.AvailableInMinutes = &mins
	}
	return &t, nil
}

// CreateTable inserts a table, deriving seats from size when unset.
func (db *DB) CreateTable(ctx context.Context, t *models.Table) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Seats == 0 {
		t.Seats = models.SeatsFor(t.Size)
	}
	if t.Status == "" {
		t.Status = models.TableAvailable
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
        INSERT INTO tables (id, floor_id, table_number, size, seats, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FloorID, t.TableNumber, t.Size, t.Seats, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// GetTable returns a table by id, or sql.ErrNoRows.
func (db *DB) GetTable(ctx context.Context, id string) (*models.Table, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM tables WHERE id = ?", id)
	return scanTable(row)
}

// ListTables returns every table.
func (db *DB) ListTables(ctx context.Context) ([]models.Table, error) {
	return db.queryTables(ctx, "SELECT "+tableColumns+" FROM tables ORDER BY table_number ASC")
}

// ListTablesByFloor returns the tables on one floor.
func (db *DB) ListTablesByFloor(ctx context.Context, floorID string) ([]models.Table, error) {
	return db.queryTables(ctx,
		"SELECT "+tableColumns+" FROM tables WHERE floor_id = ? ORDER BY table_number ASC", floorID)
}

func (db *DB) queryTables(ctx context.Context, query string, args ...any) ([]models.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// SetTableState writes status, occupied_since and available_in_minutes in one
// statement. Callers hold the per-table lock; this is the single write path
// for table state so the OCCUPIED/occupiedSince invariant is kept in one place.
func (db *DB) SetTableState(ctx context.Context, id string, status models.TableStatus, occupiedSince *time.Time, availableIn *int) error {
	var since sql.NullTime
	if occupiedSince != nil {
		since = sql.NullTime{Time: *occupiedSince, Valid: true}
	}
	var avail sql.NullInt64
	if availableIn != nil {
		avail = sql.NullInt64{Int64: int64(*availableIn), Valid: true}
	}

	res, err := db.ExecContext(ctx, `
        UPDATE tables
        SET status = ?, occupied_since = ?, available_in_minutes = ?, updated_at = ?
        WHERE id = ?`,
		status, since, avail, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("set table state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTableAvailability updates only the staff-entered availability estimate.
func (db *DB) SetTableAvailability(ctx context.Context, id string, availableIn *int) error {
	var avail sql.NullInt64
	if availableIn != nil {
		avail = sql.NullInt64{Int64: int64(*availableIn), Valid: true}
	}
	res, err := db.ExecContext(ctx,
		"UPDATE tables SET available_in_minutes = ?, updated_at = ? WHERE id = ?",
		avail, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("set table availability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTable removes a table by id.
func (db *DB) DeleteTable(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM tables WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountTablesByStatus returns the number of tables with the given status.
func (db *DB) CountTablesByStatus(ctx context.Context, status models.TableStatus) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tables WHERE status = ?", status).Scan(&n)
	return n, err
}

// CountTablesBySize returns the number of tables in the given size class.
func (db *DB) CountTablesBySize(ctx context.Context, size models.TableSize) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tables WHERE size = ?", size).Scan(&n)
	return n, err
}

// CountTables returns the total number of tables.
func (db *DB) CountTables(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tables").Scan(&n)
	return n, err
}
