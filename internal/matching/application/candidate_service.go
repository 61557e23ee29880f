package application

import (
	"context"
	"database/sql"

	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/matching/domain"
	"pricetrack/internal/matching/infrastructure"
	shareddomain "pricetrack/internal/shared/domain"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// CandidateService liste les annonces éligibles à l'association avec un produit final
type CandidateService struct {
	uow        sharedinfra.UnitOfWork
	products   *cataloginfra.FinalProductRepository
	candidates *infrastructure.CandidateQueryRepository
}

// NewCandidateService crée une nouvelle instance de CandidateService
func NewCandidateService(
	uow sharedinfra.UnitOfWork,
	products *cataloginfra.FinalProductRepository,
	candidates *infrastructure.CandidateQueryRepository,
) *CandidateService {
	return &CandidateService{
		uow:        uow,
		products:   products,
		candidates: candidates,
	}
}

// SelectCandidates retourne une page de candidats et le total filtré
// Les valeurs de pagination invalides sont ramenées à des bornes saines
func (s *CandidateService) SelectCandidates(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	filter domain.CandidateFilter,
	page, pageSize int,
) (*domain.CandidatePage, error) {
	exists, err := s.products.Exists(ctx, fp)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shareddomain.InvalidReference("candidates.Select", "final product %d does not exist", fp)
	}

	filter = filter.Normalize()
	p := shareddomain.NewPage(page, pageSize)

	// Le total et la page sont lus sur le même instantané
	var (
		total int
		items = []domain.Candidate{}
	)
	err = s.uow.ExecuteReadOnly(ctx, func(tx *sql.Tx) error {
		candidates := s.candidates.WithTx(tx)

		var err error
		if total, err = candidates.Count(ctx, fp, filter); err != nil {
			return err
		}
		if p.Offset() < total {
			items, err = candidates.Find(ctx, fp, filter, p)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.CandidatePage{Items: items, Total: total, Page: p}, nil
}
