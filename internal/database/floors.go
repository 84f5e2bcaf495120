package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// CreateFloor inserts a floor, assigning an id when absent.
func (db *DB) CreateFloor(ctx context.Context, f *models.Floor) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
        INSERT INTO floors (id, floor_number, name, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.FloorNumber, f.Name, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create floor: %w", err)
	}
	return nil
}

// DeleteFloor removes a floor by id.
func (db *DB) DeleteFloor(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM floors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete floor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListFloors returns all floors ordered by floor number.
func (db *DB) ListFloors(ctx context.Context) ([]models.Floor, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, floor_number, name, created_at, updated_at
        FROM floors ORDER BY floor_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	defer rows.Close()

	var floors []models.Floor
	for rows.Next() {
		var f models.Floor
		if err := rows.Scan(&f.ID, &f.FloorNumber, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

// ListFloorsWithTables returns floors with their tables attached, ordered by
// floor number then table number.
func (db *DB) ListFloorsWithTables(ctx context.Context) ([]models.Floor, error) {
	floors, err := db.ListFloors(ctx)
	if err != nil {
		return nil, err
	}
	for i := range floors {
		tables, err := db.ListTablesByFloor(ctx, floors[i].ID)
		if err != nil {
			return nil, err
		}
		floors[i].Tables = tables
	}
	return floors, nil
}

// CountFloors returns the number of floors.
func (db *DB) CountFloors(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM floors").Scan(&n)
	return n, err
}
