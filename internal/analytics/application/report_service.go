package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pricetrack/internal/analytics/domain"
	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/platform/logger"
)

// ReportService assemble tous les rapports d'un produit final
type ReportService struct {
	products   *cataloginfra.FinalProductRepository
	catalog    catalogdomain.Catalog
	lowest     *LowestMomentService
	campaigns  *CampaignService
	aggregates *AggregateService
	log        *logger.Logger
}

// NewReportService crée une nouvelle instance de ReportService
func NewReportService(
	products *cataloginfra.FinalProductRepository,
	catalog catalogdomain.Catalog,
	lowest *LowestMomentService,
	campaigns *CampaignService,
	aggregates *AggregateService,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		products:   products,
		catalog:    catalog,
		lowest:     lowest,
		campaigns:  campaigns,
		aggregates: aggregates,
		log:        log.With("service", "reports"),
	}
}

// Overview exécute les quatre rapports et la lecture du nom de catégorie en parallèle
// La première erreur annule les autres
func (s *ReportService) Overview(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	params domain.CampaignParams,
) (*domain.Overview, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, fp)
	if err != nil {
		return nil, err
	}

	overview := &domain.Overview{
		Product: domain.ProductHeader{
			ID:            int64(product.ID()),
			Name:          product.Name(),
			Brand:         product.Brand(),
			NormalPrice:   product.NormalPrice().Ptr(),
			CampaignPrice: product.CampaignPrice().Ptr(),
		},
		GeneratedAt: time.Now(),
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.lowest.LowestMoment(gctx, fp)
		overview.LowestMoments = rows
		return err
	})
	g.Go(func() error {
		report, err := s.campaigns.DetectCampaigns(gctx, fp, params)
		overview.Campaigns = report
		return err
	})
	g.Go(func() error {
		rows, err := s.aggregates.PlatformAverages(gctx, fp)
		overview.PlatformAverages = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.aggregates.TagAverages(gctx, fp)
		overview.TagAverages = rows
		return err
	})
	g.Go(func() error {
		categoryID, ok := product.CategoryID()
		if !ok {
			return nil
		}
		name, found, err := s.catalog.CategoryName(gctx, categoryID)
		if found {
			overview.Product.Category = name
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Warn("overview failed", "final_product_id", fp, "error", err)
		return nil, err
	}

	s.log.Debug("overview computed", "final_product_id", fp, "duration", time.Since(start))
	return overview, nil
}
