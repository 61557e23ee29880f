package application

import (
	"context"
	"database/sql"

	"pricetrack/internal/catalog/domain"
	"pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/platform/logger"
	shareddomain "pricetrack/internal/shared/domain"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// FinalProductPage une page de produits finaux et le total avant pagination
type FinalProductPage struct {
	Items []domain.FinalProductSummary
	Total int
	Page  shareddomain.Page
}

// FinalProductService administration des produits finaux (liste, suppression)
type FinalProductService struct {
	uow      sharedinfra.UnitOfWork
	products *infrastructure.FinalProductRepository
	log      *logger.Logger
}

// NewFinalProductService crée une nouvelle instance de FinalProductService
func NewFinalProductService(
	uow sharedinfra.UnitOfWork,
	products *infrastructure.FinalProductRepository,
	log *logger.Logger,
) *FinalProductService {
	return &FinalProductService{
		uow:      uow,
		products: products,
		log:      log.With("service", "final_products"),
	}
}

// ListFinalProducts retourne une page de produits finaux avec leur nombre d'annonces associées
func (s *FinalProductService) ListFinalProducts(ctx context.Context, page, size int) (*FinalProductPage, error) {
	p := shareddomain.NewPage(page, size)

	items, total, err := s.products.List(ctx, p)
	if err != nil {
		s.log.Error("list final products failed", "error", err)
		return nil, err
	}

	return &FinalProductPage{Items: items, Total: total, Page: p}, nil
}

// GetFinalProduct retourne un produit final; InvalidReference s'il n'existe pas
func (s *FinalProductService) GetFinalProduct(ctx context.Context, id domain.FinalProductID) (*domain.FinalProduct, error) {
	return s.products.FindByID(ctx, id)
}

// DeleteFinalProduct supprime un produit final, ses associations et ses étiquettes dans une transaction
// Un produit synchronisé vers le commerce externe ne peut pas être supprimé (ConstraintViolation)
func (s *FinalProductService) DeleteFinalProduct(ctx context.Context, id domain.FinalProductID) error {
	const op = "finalProducts.Delete"

	var removedMatches int64
	err := s.uow.Execute(ctx, func(tx *sql.Tx) error {
		repo := s.products.WithTx(tx)

		product, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product.IsExternallyManaged() {
			return shareddomain.NewError(shareddomain.KindConstraintViolation, op,
				"final product is mirrored to the external commerce system and cannot be deleted", nil)
		}

		if removedMatches, err = repo.DeleteMatches(ctx, id); err != nil {
			return err
		}
		if _, err := repo.DeleteTagLinks(ctx, id); err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if !shareddomain.IsKind(err, shareddomain.KindInvalidReference) {
			s.log.Warn("delete final product failed", "final_product_id", id, "error", err)
		}
		return err
	}

	s.log.Info("final product deleted", "final_product_id", id, "removed_matches", removedMatches)
	return nil
}
