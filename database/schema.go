package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements DDL idempotente, appliquée dans l'ordre
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		parent_id  BIGINT REFERENCES categories(id),
		CHECK (parent_id IS NULL OR parent_id <> id)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                  BIGSERIAL PRIMARY KEY,
		platform            TEXT NOT NULL,
		platform_listing_id TEXT NOT NULL,
		title               TEXT,
		brand               TEXT,
		url                 TEXT,
		listing_type        TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (platform, platform_listing_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings (created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS listing_tags (
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		tag_id     BIGINT NOT NULL REFERENCES tags(id),
		PRIMARY KEY (listing_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS price_observations (
		id           BIGSERIAL PRIMARY KEY,
		listing_id   BIGINT NOT NULL REFERENCES listings(id),
		price        NUMERIC,
		promo_price  NUMERIC,
		stock_status TEXT,
		observed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_observations_listing_time ON price_observations (listing_id, observed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS final_products (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		brand          TEXT,
		category_id    BIGINT REFERENCES categories(id),
		price          NUMERIC,
		campaign_price NUMERIC,
		external_id    TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS final_product_tags (
		final_product_id BIGINT NOT NULL REFERENCES final_products(id),
		tag_id           BIGINT NOT NULL REFERENCES tags(id),
		PRIMARY KEY (final_product_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS final_product_matches (
		final_product_id BIGINT NOT NULL REFERENCES final_products(id),
		listing_id       BIGINT NOT NULL REFERENCES listings(id),
		matched_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (final_product_id, listing_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_final_product_matches_listing ON final_product_matches (listing_id)`,
}

// Tables liste des tables dans l'ordre inverse des dépendances (utile pour TRUNCATE)
var Tables = []string{
	"final_product_matches",
	"final_product_tags",
	"final_products",
	"price_observations",
	"listing_tags",
	"listings",
	"tags",
	"categories",
}

// Migrate applique le schéma dans une seule transaction
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return tx.Commit()
}
