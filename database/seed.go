package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"
)

// SeedOptions volumes de données de démonstration
type SeedOptions struct {
	Listings      int
	Days          int
	FinalProducts int
}

var seedPlatforms = []string{"trendyol", "hepsiburada", "amazon", "n11", "ciceksepeti"}

var seedListingTypes = []string{"Sneakers", "Running Shoes", "Backpack", "Smartwatch", "Headphones", "Jacket"}

var seedBrands = []string{"Nike", "Adidas", "Puma", "Samsung", "Sony", "North Face", "Xiaomi", "New Balance"}

// SeedDatabase peuple toutes les tables avec des données de démonstration
func SeedDatabase(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if opts.FinalProducts <= 0 {
		opts.FinalProducts = 20
	}

	fmt.Println("🌱 Génération des données de référence...")

	// 1. Catégories (deux niveaux)
	categoryIDs, err := seedCategories(ctx, db)
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	// 2. Étiquettes
	tagIDs, err := seedTags(ctx, db)
	if err != nil {
		return fmt.Errorf("seeding tags: %w", err)
	}

	// 3. Annonces brutes et leur historique de prix
	listingIDs, err := seedListings(ctx, db, opts.Listings, tagIDs)
	if err != nil {
		return fmt.Errorf("seeding listings: %w", err)
	}

	fmt.Println("🌱 Génération de l'historique de prix...")
	if err := seedPriceObservations(ctx, db, listingIDs, opts.Days); err != nil {
		return fmt.Errorf("seeding price observations: %w", err)
	}

	// 4. Produits finaux et associations
	if err := seedFinalProducts(ctx, db, opts.FinalProducts, categoryIDs, tagIDs, listingIDs); err != nil {
		return fmt.Errorf("seeding final products: %w", err)
	}

	// 5. Analyse finale
	fmt.Println("🔍 Analyse des tables...")
	if _, err := db.ExecContext(ctx, "ANALYZE"); err != nil {
		fmt.Println("⚠️ Attention: échec de l'analyse:", err)
	}

	return nil
}

// seedCategories génère les catégories racines et leurs sous-catégories
func seedCategories(ctx context.Context, db *sql.DB) ([]int64, error) {
	tree := map[string][]string{
		"Footwear":    {"Sneakers", "Running"},
		"Electronics": {"Audio", "Wearables"},
		"Outdoor":     {"Bags", "Jackets"},
	}

	ids := make([]int64, 0)
	for root, children := range tree {
		var rootID int64
		if err := db.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id`, root).Scan(&rootID); err != nil {
			return nil, err
		}
		ids = append(ids, rootID)

		for _, child := range children {
			var childID int64
			if err := db.QueryRowContext(ctx,
				`INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING id`, child, rootID).Scan(&childID); err != nil {
				return nil, err
			}
			ids = append(ids, childID)
		}
	}

	fmt.Printf("   ✅ %d catégories créées\n", len(ids))
	return ids, nil
}

// seedTags génère les étiquettes
func seedTags(ctx context.Context, db *sql.DB) ([]int64, error) {
	names := []string{"Best Seller", "New Season", "Outlet", "Premium", "Eco", "Limited"}

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var id int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	fmt.Printf("   ✅ %d étiquettes créées\n", len(ids))
	return ids, nil
}

// seedListings génère les annonces brutes; environ un tiers porte ses propres étiquettes
func seedListings(ctx context.Context, db *sql.DB, count int, tagIDs []int64) ([]int64, error) {
	fmt.Printf("   📦 Génération de %d annonces...\n", count)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		platform := seedPlatforms[rand.Intn(len(seedPlatforms))]
		brand := seedBrands[rand.Intn(len(seedBrands))]
		listingType := seedListingTypes[rand.Intn(len(seedListingTypes))]
		externalID := fmt.Sprintf("%s-%06d", platform[:3], i+1)

		var id int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO listings (platform, platform_listing_id, title, brand, url, listing_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (platform, platform_listing_id) DO UPDATE SET title = EXCLUDED.title, brand = EXCLUDED.brand, updated_at = NOW()
			RETURNING id
		`, platform, externalID,
			fmt.Sprintf("%s %s %d", brand, listingType, i+1),
			brand,
			fmt.Sprintf("https://www.%s.example/p/%s", platform, externalID),
			listingType,
			time.Now().Add(-time.Duration(rand.Intn(60*24))*time.Hour),
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)

		if len(tagIDs) > 0 && rand.Float32() < 0.33 {
			tagID := tagIDs[rand.Intn(len(tagIDs))]
			if _, err := db.ExecContext(ctx,
				`INSERT INTO listing_tags (listing_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, tagID); err != nil {
				return nil, err
			}
		}
	}

	fmt.Printf("   ✅ %d annonces créées\n", len(ids))
	return ids, nil
}

// seedPriceObservations génère une observation par jour et par annonce, avec des promotions occasionnelles
func seedPriceObservations(ctx context.Context, db *sql.DB, listingIDs []int64, days int) error {
	startTime := time.Now()
	total := 0

	for _, listingID := range listingIDs {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("price_observations", "listing_id", "price", "promo_price", "stock_status", "observed_at"))
		if err != nil {
			tx.Rollback()
			return err
		}

		base := 200.0 + rand.Float64()*1800.0
		for day := days; day >= 0; day-- {
			// Variation de prix (+/- 15%)
			price := base * (0.85 + rand.Float64()*0.3)

			var promo interface{}
			switch r := rand.Float32(); {
			case r < 0.03:
				promo = price * (0.2 + rand.Float64()*0.15) // flash sale
			case r < 0.15:
				promo = price * (0.55 + rand.Float64()*0.4)
			case r < 0.18:
				promo = price // même prix: pas une campagne
			}

			stock := "in_stock"
			if rand.Float32() < 0.05 {
				stock = "out_of_stock"
			}

			observedAt := time.Now().AddDate(0, 0, -day).Add(-time.Duration(rand.Intn(720)) * time.Minute)
			if _, err := stmt.ExecContext(ctx, listingID, price, promo, stock, observedAt); err != nil {
				stmt.Close()
				tx.Rollback()
				return err
			}
			total++
		}

		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
		if err := stmt.Close(); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	fmt.Printf("   ✅ %d observations créées en %v\n", total, time.Since(startTime))
	return nil
}

// seedFinalProducts génère les produits finaux, leurs étiquettes et quelques associations
func seedFinalProducts(ctx context.Context, db *sql.DB, count int, categoryIDs, tagIDs, listingIDs []int64) error {
	fmt.Printf("   📦 Génération de %d produits finaux...\n", count)

	matched := 0
	for i := 0; i < count; i++ {
		brand := seedBrands[rand.Intn(len(seedBrands))]
		listingType := seedListingTypes[rand.Intn(len(seedListingTypes))]
		price := 300.0 + rand.Float64()*1500.0

		var externalID interface{}
		if rand.Float32() < 0.2 {
			externalID = fmt.Sprintf("ext-%d", 1000+i)
		}

		var categoryID interface{}
		if len(categoryIDs) > 0 {
			categoryID = categoryIDs[rand.Intn(len(categoryIDs))]
		}

		var id int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO final_products (name, brand, category_id, price, campaign_price, external_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, fmt.Sprintf("%s %s", brand, listingType), brand, categoryID, price, price*0.9, externalID).Scan(&id)
		if err != nil {
			return err
		}

		// 1 à 2 étiquettes par produit
		tagCount := 1 + rand.Intn(2)
		for n := 0; n < tagCount && len(tagIDs) > 0; n++ {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO final_product_tags (final_product_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, tagIDs[rand.Intn(len(tagIDs))]); err != nil {
				return err
			}
		}

		// 0 à 5 annonces associées
		matchCount := rand.Intn(6)
		for n := 0; n < matchCount && len(listingIDs) > 0; n++ {
			res, err := db.ExecContext(ctx,
				`INSERT INTO final_product_matches (final_product_id, listing_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, listingIDs[rand.Intn(len(listingIDs))])
			if err != nil {
				return err
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				matched++
			}
		}
	}

	fmt.Printf("   ✅ %d produits finaux créés, %d associations\n", count, matched)
	return nil
}
