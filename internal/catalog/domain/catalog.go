package domain

import "context"

// Catalog fournit en lecture seule les noms d'étiquettes et de catégories
// Injecté dans les services qui en ont besoin; aucun état global
type Catalog interface {
	TagNames(ctx context.Context, ids []TagID) (map[TagID]string, error)
	CategoryName(ctx context.Context, id CategoryID) (string, bool, error)
}

// FinalProductSummary ligne de liste des produits finaux avec leur nombre d'annonces associées
type FinalProductSummary struct {
	Product      *FinalProduct
	MatchedCount int
}
