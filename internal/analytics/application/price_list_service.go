package application

import (
	"context"
	"time"

	"pricetrack/internal/analytics/domain"
	"pricetrack/internal/analytics/infrastructure"
	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
)

// PriceListService historique de prix d'une annonce et classement des annonces par prix courant
type PriceListService struct {
	products *cataloginfra.FinalProductRepository
	prices   *infrastructure.PriceQueryRepository
	now      func() time.Time
}

// NewPriceListService crée une nouvelle instance de PriceListService
func NewPriceListService(
	products *cataloginfra.FinalProductRepository,
	prices *infrastructure.PriceQueryRepository,
) *PriceListService {
	return &PriceListService{
		products: products,
		prices:   prices,
		now:      time.Now,
	}
}

// PriceHistory retourne toutes les observations d'une annonce par date croissante
func (s *PriceListService) PriceHistory(ctx context.Context, listingID catalogdomain.ListingID) (*domain.ListingPriceHistory, error) {
	ref, observations, err := s.prices.GetPriceHistory(ctx, listingID)
	if err != nil {
		return nil, err
	}

	history := &domain.ListingPriceHistory{Listing: ref, Observations: observations}
	if lm, ok := domain.LowestMomentFromHistory(ref, observations, s.now()); ok {
		history.Lowest = &lm
	}
	return history, nil
}

// StockStatus retourne l'état de stock de la dernière observation d'une annonce
func (s *PriceListService) StockStatus(ctx context.Context, listingID catalogdomain.ListingID) (domain.StockStatus, error) {
	return s.prices.GetStockStatus(ctx, listingID)
}

// LowestPriceList retourne les annonces associées triées par prix effectif (promotion active sinon prix normal)
func (s *PriceListService) LowestPriceList(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.LowestPriceEntry, error) {
	if err := requireFinalProduct(ctx, s.products, "reports.LowestPriceList", fp); err != nil {
		return nil, err
	}

	entries, err := s.prices.GetLatestObservations(ctx, fp)
	if err != nil {
		return nil, err
	}
	domain.SortByEffectivePrice(entries)
	return entries, nil
}
