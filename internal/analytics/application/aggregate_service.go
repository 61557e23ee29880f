package application

import (
	"context"

	"pricetrack/internal/analytics/domain"
	"pricetrack/internal/analytics/infrastructure"
	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	shareddomain "pricetrack/internal/shared/domain"
)

// AggregateService statistiques des derniers prix par plateforme et par étiquette
type AggregateService struct {
	products *cataloginfra.FinalProductRepository
	prices   *infrastructure.PriceQueryRepository
	catalog  catalogdomain.Catalog
}

// NewAggregateService crée une nouvelle instance de AggregateService
// Le catalogue fournit les noms d'étiquettes en lecture seule
func NewAggregateService(
	products *cataloginfra.FinalProductRepository,
	prices *infrastructure.PriceQueryRepository,
	catalog catalogdomain.Catalog,
) *AggregateService {
	return &AggregateService{
		products: products,
		prices:   prices,
		catalog:  catalog,
	}
}

// PlatformAverages groupe les annonces associées par plateforme
func (s *AggregateService) PlatformAverages(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.PlatformAverage, error) {
	if err := requireFinalProduct(ctx, s.products, "reports.PlatformAverages", fp); err != nil {
		return nil, err
	}

	listings, err := s.prices.GetLatestPrices(ctx, fp)
	if err != nil {
		return nil, err
	}
	return domain.ComputePlatformAverages(listings), nil
}

// TagAverages groupe les annonces associées par étiquette du produit final
func (s *AggregateService) TagAverages(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.TagAverage, error) {
	product, err := s.products.FindByID(ctx, fp)
	if err != nil {
		return nil, err
	}

	tags := product.TagIDs()
	if len(tags) == 0 {
		return []domain.TagAverage{}, nil
	}

	listings, err := s.prices.GetLatestPrices(ctx, fp)
	if err != nil {
		return nil, err
	}

	names, err := s.catalog.TagNames(ctx, tags)
	if err != nil {
		return nil, err
	}
	return domain.ComputeTagAverages(tags, listings, names), nil
}

// TagPrices prix moyen de chaque produit final portant l'étiquette; InvalidReference si elle n'existe pas
func (s *AggregateService) TagPrices(ctx context.Context, tag catalogdomain.TagID) (*domain.TagPriceReport, error) {
	names, err := s.catalog.TagNames(ctx, []catalogdomain.TagID{tag})
	if err != nil {
		return nil, err
	}
	name, ok := names[tag]
	if !ok {
		return nil, shareddomain.InvalidReference("reports.TagPrices", "tag %d does not exist", tag)
	}

	products, err := s.prices.GetTagPrices(ctx, tag)
	if err != nil {
		return nil, err
	}
	return &domain.TagPriceReport{TagID: tag, TagName: name, Products: products}, nil
}
