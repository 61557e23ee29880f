package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"

	analyticsapp "pricetrack/internal/analytics/application"
	analyticsdomain "pricetrack/internal/analytics/domain"
	catalogdomain "pricetrack/internal/catalog/domain"
	"pricetrack/internal/export/domain"
	"pricetrack/internal/platform/logger"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// ExportService exporte les rapports d'analyse au format CSV
type ExportService struct {
	lowest    *analyticsapp.LowestMomentService
	campaigns *analyticsapp.CampaignService
	workers   int
	batchSize int
	log       *logger.Logger
}

// NewExportService crée une nouvelle instance de ExportService
func NewExportService(
	lowest *analyticsapp.LowestMomentService,
	campaigns *analyticsapp.CampaignService,
	log *logger.Logger,
) *ExportService {
	return &ExportService{
		lowest:    lowest,
		campaigns: campaigns,
		workers:   4,
		batchSize: 1000,
		log:       log.With("service", "export"),
	}
}

// LowestMomentCSV exporte le rapport de prix le plus bas d'un produit final
func (s *ExportService) LowestMomentCSV(ctx context.Context, fp catalogdomain.FinalProductID) ([]byte, *domain.ExportJob, error) {
	return s.LowestMomentsCSV(ctx, []catalogdomain.FinalProductID{fp})
}

// LowestMomentsCSV calcule les rapports de plusieurs produits finaux sur le worker pool
// et les écrit dans un seul CSV, par identifiant de produit croissant
func (s *ExportService) LowestMomentsCSV(ctx context.Context, ids []catalogdomain.FinalProductID) ([]byte, *domain.ExportJob, error) {
	job, err := domain.NewExportJob(domain.ExportKindLowestMoment, ids)
	if err != nil {
		return nil, nil, err
	}

	products := job.FinalProductIDs()
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })

	// Un emplacement par produit: chaque tâche écrit uniquement le sien
	results := make([][]analyticsdomain.LowestMoment, len(products))

	wp := sharedinfra.NewWorkerPool(ctx, s.workers)
	wp.Start()
	for i, fp := range products {
		task := func(ctx context.Context) error {
			rows, err := s.lowest.LowestMoment(ctx, fp)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		}
		if err := wp.Submit(task); err != nil {
			wp.Stop()
			_ = wp.Wait()
			return nil, nil, err
		}
	}
	if err := wp.Wait(); err != nil {
		s.log.Warn("lowest moment export failed", "final_products", len(products), "error", err)
		return nil, nil, err
	}

	buffer := bytes.NewBuffer(make([]byte, 0, 64*1024))
	writer := csv.NewWriter(buffer)
	if err := writer.Write(domain.LowestMomentCSVHeaders()); err != nil {
		return nil, nil, err
	}

	written := 0
	for i, fp := range products {
		for _, lm := range results[i] {
			if err := writer.Write(domain.LowestMomentRecord(fp, lm)); err != nil {
				return nil, nil, err
			}
			written++
			if written%s.batchSize == 0 {
				writer.Flush()
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, nil, err
	}

	s.log.Info("lowest moment export generated", "final_products", len(products), "rows", written)
	return buffer.Bytes(), job, nil
}

// CampaignsCSV exporte les événements de campagne d'un produit final
func (s *ExportService) CampaignsCSV(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	params analyticsdomain.CampaignParams,
) ([]byte, *domain.ExportJob, error) {
	job, err := domain.NewExportJob(domain.ExportKindCampaigns, []catalogdomain.FinalProductID{fp})
	if err != nil {
		return nil, nil, err
	}

	report, err := s.campaigns.DetectCampaigns(ctx, fp, params)
	if err != nil {
		return nil, nil, err
	}

	buffer := bytes.NewBuffer(make([]byte, 0, 16*1024))
	writer := csv.NewWriter(buffer)
	if err := writer.Write(domain.CampaignCSVHeaders()); err != nil {
		return nil, nil, err
	}
	for _, e := range report.Events {
		if err := writer.Write(domain.CampaignRecord(fp, e)); err != nil {
			return nil, nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, nil, err
	}
	return buffer.Bytes(), job, nil
}
