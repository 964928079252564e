package db

import (
	"context"

	"github.com/google/uuid"
)

const getCommodityByID = `
SELECT id, owner_id, commodity_name, min_price, is_active, is_approved, created_at, updated_at
FROM commodities
WHERE id = $1
`

func (q *Queries) GetCommodityByID(ctx context.Context, id uuid.UUID) (Commodity, error) {
	row := q.db.QueryRow(ctx, getCommodityByID, id)
	var c Commodity
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.CommodityName,
		&c.MinPrice,
		&c.IsActive,
		&c.IsApproved,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

const deactivateCommodity = `
UPDATE commodities
SET is_active = false, updated_at = now()
WHERE id = $1
RETURNING id, owner_id, commodity_name, min_price, is_active, is_approved, created_at, updated_at
`

func (q *Queries) DeactivateCommodity(ctx context.Context, id uuid.UUID) (Commodity, error) {
	row := q.db.QueryRow(ctx, deactivateCommodity, id)
	var c Commodity
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.CommodityName,
		&c.MinPrice,
		&c.IsActive,
		&c.IsApproved,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
