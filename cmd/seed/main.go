package main

import (
	"context"
	"fmt"
	"log"

	"pricetrack/database"
	"pricetrack/internal/config"
)

func main() {
	cfg, missing := config.Load()
	if len(missing) > 0 {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	ctx := context.Background()

	// Connexion PostgreSQL
	db, err := database.Open(ctx, cfg.PostgresDSN(), database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer db.Close()

	fmt.Println("✅ Connexion PostgreSQL établie")

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("❌ Erreur migration:", err)
	}

	fmt.Println("🌱 Démarrage du seed de la base de données...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	err = database.SeedDatabase(ctx, db, database.SeedOptions{
		Listings: cfg.SeedListings,
		Days:     cfg.SeedDays,
	})
	if err != nil {
		log.Fatal("❌ Erreur lors du seed:", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("✅ Seed terminé avec succès!")
	fmt.Println()
	fmt.Println("Vous pouvez maintenant démarrer l'application avec:")
	fmt.Println("  go run main.go")
	fmt.Println()
	fmt.Println("Et tester les endpoints:")
	fmt.Println("  http://localhost:8080/api/v1/final-products")
	fmt.Println("  http://localhost:8080/api/v1/reports/overview/1")
}
