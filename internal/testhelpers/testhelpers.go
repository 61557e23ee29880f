package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"

	"pricetrack/database"
	analyticsinfra "pricetrack/internal/analytics/infrastructure"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/config"
	matchinginfra "pricetrack/internal/matching/infrastructure"
	"pricetrack/internal/platform/logger"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// TestContext contient toutes les dépendances pour les tests d'intégration
// Note: Ne contient PAS les services pour éviter les import cycles
// Les tests doivent créer leurs propres services en utilisant ce contexte
type TestContext struct {
	DB  *sql.DB
	UoW sharedinfra.UnitOfWork
	Log *logger.Logger

	// Repositories
	FinalProductRepo   *cataloginfra.FinalProductRepository
	ListingRepo        *cataloginfra.ListingQueryRepository
	CatalogRepo        *cataloginfra.CatalogQueryRepository
	MatchRepo          *matchinginfra.MatchRepository
	CandidateQueryRepo *matchinginfra.CandidateQueryRepository
	PriceQueryRepo     *analyticsinfra.PriceQueryRepository
}

// loadConfig lit la configuration de test (.env à la racine du module, vu depuis internal/<ctx>/<layer>)
func loadConfig() *config.Config {
	cfg, _ := config.Load("../../../.env")
	return cfg
}

var listingSeq atomic.Int64

// SetupTestDB initialise une connexion à la base de données de test et applique le schéma
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Configuration du pool de connexions (optimisé pour tests)
	db, err := database.Open(ctx, cfg.PostgresDSN(), database.DefaultPoolConfig)
	if err != nil {
		tb.Fatalf("Failed to open database: %v (host=%s db=%s)", err, cfg.DBHost, cfg.DBName)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		tb.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

// SetupTestContext initialise un contexte de test avec une base vide et les repositories
// Les services doivent être créés par les tests eux-mêmes pour éviter les import cycles
func SetupTestContext(tb testing.TB) *TestContext {
	tb.Helper()

	tc := &TestContext{}

	// 1. Initialiser la connexion DB
	tc.DB = SetupTestDB(tb)
	tc.ResetData(tb)

	// 2. Initialiser l'infrastructure partagée
	tc.UoW = sharedinfra.NewUnitOfWork(tc.DB)
	tc.Log = logger.NewNop()

	// 3. Initialiser les repositories
	tc.FinalProductRepo = cataloginfra.NewFinalProductRepository(tc.DB)
	tc.ListingRepo = cataloginfra.NewListingQueryRepository(tc.DB)
	tc.CatalogRepo = cataloginfra.NewCatalogQueryRepository(tc.DB)
	tc.MatchRepo = matchinginfra.NewMatchRepository(tc.DB)
	tc.CandidateQueryRepo = matchinginfra.NewCandidateQueryRepository(tc.DB)
	tc.PriceQueryRepo = analyticsinfra.NewPriceQueryRepository(tc.DB)

	return tc
}

// ResetData vide toutes les tables et remet les séquences à zéro
func (tc *TestContext) ResetData(tb testing.TB) {
	tb.Helper()
	query := "TRUNCATE " + strings.Join(database.Tables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := tc.DB.Exec(query); err != nil {
		tb.Fatalf("Failed to reset data: %v", err)
	}
}

// Cleanup libère les ressources du contexte de test
func (tc *TestContext) Cleanup() {
	if tc.DB != nil {
		tc.DB.Close()
	}
}

// ========================================
// Fixtures
// ========================================

// InsertListing insère une annonce et retourne son identifiant
func (tc *TestContext) InsertListing(tb testing.TB, platform, title, brand, listingType string, createdAt time.Time) int64 {
	tb.Helper()
	var id int64
	err := tc.DB.QueryRow(`
		INSERT INTO listings (platform, platform_listing_id, title, brand, url, listing_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, platform, fmt.Sprintf("%s-%06d", platform, listingSeq.Add(1)), title, brand,
		"https://"+platform+".example/"+title, listingType, createdAt).Scan(&id)
	if err != nil {
		tb.Fatalf("InsertListing: %v", err)
	}
	return id
}

// InsertObservation insère une observation de prix; promo <= 0 est stocké à NULL
func (tc *TestContext) InsertObservation(tb testing.TB, listingID int64, price, promo float64, observedAt time.Time) {
	tb.Helper()
	var promoValue interface{}
	if promo > 0 {
		promoValue = promo
	}
	_, err := tc.DB.Exec(`
		INSERT INTO price_observations (listing_id, price, promo_price, stock_status, observed_at)
		VALUES ($1, $2, $3, 'in_stock', $4)
	`, listingID, price, promoValue, observedAt)
	if err != nil {
		tb.Fatalf("InsertObservation: %v", err)
	}
}

// InsertTag insère une étiquette et retourne son identifiant
func (tc *TestContext) InsertTag(tb testing.TB, name string) int64 {
	tb.Helper()
	var id int64
	if err := tc.DB.QueryRow(`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		tb.Fatalf("InsertTag: %v", err)
	}
	return id
}

// TagListing attache une étiquette à une annonce
func (tc *TestContext) TagListing(tb testing.TB, listingID, tagID int64) {
	tb.Helper()
	if _, err := tc.DB.Exec(`INSERT INTO listing_tags (listing_id, tag_id) VALUES ($1, $2)`, listingID, tagID); err != nil {
		tb.Fatalf("TagListing: %v", err)
	}
}

// InsertFinalProduct insère un produit final avec ses étiquettes; externalID vide = non synchronisé
func (tc *TestContext) InsertFinalProduct(tb testing.TB, name, externalID string, tagIDs ...int64) int64 {
	tb.Helper()
	var ext interface{}
	if externalID != "" {
		ext = externalID
	}
	var id int64
	err := tc.DB.QueryRow(`
		INSERT INTO final_products (name, brand, price, campaign_price, external_id)
		VALUES ($1, 'Brand', 100, 90, $2)
		RETURNING id
	`, name, ext).Scan(&id)
	if err != nil {
		tb.Fatalf("InsertFinalProduct: %v", err)
	}
	if len(tagIDs) > 0 {
		_, err := tc.DB.Exec(`
			INSERT INTO final_product_tags (final_product_id, tag_id)
			SELECT $1, unnest($2::bigint[])
		`, id, pq.Array(tagIDs))
		if err != nil {
			tb.Fatalf("InsertFinalProduct tags: %v", err)
		}
	}
	return id
}

// InsertMatch associe directement une annonce à un produit final
func (tc *TestContext) InsertMatch(tb testing.TB, finalProductID, listingID int64) {
	tb.Helper()
	if _, err := tc.DB.Exec(`INSERT INTO final_product_matches (final_product_id, listing_id) VALUES ($1, $2)`,
		finalProductID, listingID); err != nil {
		tb.Fatalf("InsertMatch: %v", err)
	}
}

// CountMatches retourne le nombre d'associations d'un produit final
func (tc *TestContext) CountMatches(tb testing.TB, finalProductID int64) int {
	tb.Helper()
	var n int
	if err := tc.DB.QueryRow(`SELECT COUNT(*) FROM final_product_matches WHERE final_product_id = $1`,
		finalProductID).Scan(&n); err != nil {
		tb.Fatalf("CountMatches: %v", err)
	}
	return n
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.PostgresDSN(), database.DefaultPoolConfig)
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	db.Close()
}
