package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// statsResource describes how to fingerprint one cacheable resource
type statsResource struct {
	table     string
	timestamp string
}

// statsResources maps cache resource names to their backing tables.
// Append-only tables fingerprint on created_at, mutable ones on updated_at.
var statsResources = map[string]statsResource{
	"contracts": {table: "rental_contracts", timestamp: "updated_at"},
	"orders":    {table: "sales_orders", timestamp: "updated_at"},
	"movements": {table: "stock_movements", timestamp: "created_at"},
	"branches":  {table: "branches", timestamp: "updated_at"},
}

// GormVersionSource derives cache version fingerprints from the latest
// mutation timestamp and row count of the backing table. Any insert, update
// or delete changes the fingerprint, invalidating dependent cache entries
// without an explicit bust.
type GormVersionSource struct {
	db *gorm.DB
}

// NewGormVersionSource creates a new GormVersionSource
func NewGormVersionSource(db *gorm.DB) *GormVersionSource {
	return &GormVersionSource{db: db}
}

type versionRow struct {
	Latest *time.Time
	Count  int64
}

// Fingerprint returns a token that changes whenever the resource's data
// changes within the given scope. Scope is a branch UUID or "global".
func (s *GormVersionSource) Fingerprint(ctx context.Context, resource string, scope string) (string, error) {
	res, ok := statsResources[resource]
	if !ok {
		return "", fmt.Errorf("unknown stats resource %q", resource)
	}

	query := s.db.WithContext(ctx).
		Table(res.table).
		Select(fmt.Sprintf("MAX(%s) AS latest, COUNT(*) AS count", res.timestamp))

	if scope != "global" && res.table != "branches" {
		query = query.Where("branch_id = ? OR branch_id IS NULL", scope)
	}

	var row versionRow
	if err := query.Scan(&row).Error; err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", resource, err)
	}

	latest := int64(0)
	if row.Latest != nil {
		latest = row.Latest.UnixNano()
	}
	return fmt.Sprintf("%d-%d", latest, row.Count), nil
}
