package application

import (
	"context"
	"time"

	"pricetrack/internal/analytics/domain"
	"pricetrack/internal/analytics/infrastructure"
	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	shareddomain "pricetrack/internal/shared/domain"
)

// LowestMomentService compare le prix historique le plus bas de chaque annonce à son prix courant
type LowestMomentService struct {
	products *cataloginfra.FinalProductRepository
	prices   *infrastructure.PriceQueryRepository
	now      func() time.Time
}

// NewLowestMomentService crée une nouvelle instance de LowestMomentService
func NewLowestMomentService(
	products *cataloginfra.FinalProductRepository,
	prices *infrastructure.PriceQueryRepository,
) *LowestMomentService {
	return &LowestMomentService{
		products: products,
		prices:   prices,
		now:      time.Now,
	}
}

// LowestMoment retourne une ligne par annonce associée ayant au moins un prix positif,
// triée par prix le plus bas croissant
func (s *LowestMomentService) LowestMoment(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.LowestMoment, error) {
	if err := requireFinalProduct(ctx, s.products, "reports.LowestMoment", fp); err != nil {
		return nil, err
	}

	rows, err := s.prices.GetLowestMoments(ctx, fp)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]domain.LowestMoment, 0, len(rows))
	for _, row := range rows {
		if lm, ok := domain.NewLowestMoment(row.Listing, row.Lowest, row.Latest, now); ok {
			result = append(result, lm)
		}
	}
	domain.SortLowestMoments(result)
	return result, nil
}

// requireFinalProduct retourne InvalidReference si le produit final n'existe pas
func requireFinalProduct(ctx context.Context, products *cataloginfra.FinalProductRepository, op string, fp catalogdomain.FinalProductID) error {
	exists, err := products.Exists(ctx, fp)
	if err != nil {
		return err
	}
	if !exists {
		return shareddomain.InvalidReference(op, "final product %d does not exist", fp)
	}
	return nil
}
