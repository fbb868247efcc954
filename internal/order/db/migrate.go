package db

import (
	"context"

	"github.com/uptrace/bun"
)

// Migrate creates the orders table if it does not exist yet. The store holds
// durable customer data, so nothing here ever drops or rewrites a table.
func Migrate(bunDB *bun.DB) error {
	_, err := bunDB.NewCreateTable().
		Model((*OrderRecord)(nil)).
		IfNotExists().
		Exec(context.Background())
	return err
}
