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

// CampaignService détecte les événements de campagne des annonces associées
type CampaignService struct {
	products *cataloginfra.FinalProductRepository
	prices   *infrastructure.PriceQueryRepository
	now      func() time.Time
}

// NewCampaignService crée une nouvelle instance de CampaignService
func NewCampaignService(
	products *cataloginfra.FinalProductRepository,
	prices *infrastructure.PriceQueryRepository,
) *CampaignService {
	return &CampaignService{
		products: products,
		prices:   prices,
		now:      time.Now,
	}
}

// DetectCampaigns retourne les événements de la fenêtre et leurs agrégats
// Aucune annonce associée donne une liste vide et des agrégats à zéro
func (s *CampaignService) DetectCampaigns(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	params domain.CampaignParams,
) (*domain.CampaignReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := requireFinalProduct(ctx, s.products, "reports.Campaigns", fp); err != nil {
		return nil, err
	}

	window, err := shareddomain.NewDateRangeEndingAt(s.now(), params.LookbackDays)
	if err != nil {
		return nil, shareddomain.NewError(shareddomain.KindInvalidInput, "reports.Campaigns", err.Error(), err)
	}

	candidates, err := s.prices.GetCampaignCandidates(ctx, fp, window, params.MinDiscountPercent)
	if err != nil {
		return nil, err
	}

	events := make([]domain.CampaignEvent, 0, len(candidates))
	for _, c := range candidates {
		if e, ok := domain.NewCampaignEvent(c.Listing, c.Observation, window, params.MinDiscountPercent); ok {
			events = append(events, e)
		}
	}
	return domain.NewCampaignReport(params, events), nil
}
