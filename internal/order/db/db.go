package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-orders/internal/models"
)

// OrderRecord is the single-table layout of the durable store. The whole
// order travels in the data column as one JSON blob; partial updates are
// done by rewriting the entire blob, never by patching sub-fields.
type OrderRecord struct {
	bun.BaseModel `bun:"table:orders"`

	ID        string    `bun:"id,pk"`
	Data      string    `bun:"data,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type DB struct {
	Bun *bun.DB
}

// Put inserts or replaces the record for order.ID. Concurrent writers are
// serialized by SQLite itself; this layer adds no locking.
func (d *DB) Put(order models.Order) error {
	blob, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}

	record := OrderRecord{
		ID:        order.ID,
		Data:      string(blob),
		CreatedAt: order.CreatedAt,
	}

	_, err = d.Bun.NewInsert().
		Model(&record).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(context.Background())
	return err
}

// GetByID fetches one order and decodes its blob.
func (d *DB) GetByID(id string) (*models.Order, error) {
	var record OrderRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal([]byte(record.Data), &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	return &order, nil
}

// GetAll returns every order, newest first.
func (d *DB) GetAll() ([]models.Order, error) {
	var records []OrderRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(records))
	for _, record := range records {
		var order models.Order
		if err := json.Unmarshal([]byte(record.Data), &order); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", record.ID, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// SetStatus rewrites the stored blob with the new status. The rest of the
// order is carried over untouched.
func (d *DB) SetStatus(id string, status models.Status) error {
	order, err := d.GetByID(id)
	if err != nil {
		return err
	}

	order.Status = status
	blob, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", id, err)
	}

	_, err = d.Bun.NewUpdate().
		Model((*OrderRecord)(nil)).
		Set("data = ?", string(blob)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// Count returns the number of stored orders.
func (d *DB) Count() (int, error) {
	return d.Bun.NewSelect().
		Model((*OrderRecord)(nil)).
		Count(context.Background())
}
