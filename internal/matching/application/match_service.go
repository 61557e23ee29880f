package application

import (
	"context"
	"database/sql"

	catalogdomain "pricetrack/internal/catalog/domain"
	cataloginfra "pricetrack/internal/catalog/infrastructure"
	"pricetrack/internal/matching/domain"
	"pricetrack/internal/matching/infrastructure"
	"pricetrack/internal/platform/logger"
	shareddomain "pricetrack/internal/shared/domain"
	sharedinfra "pricetrack/internal/shared/infrastructure"
)

// MatchService réconcilie les associations entre un produit final et ses annonces
// Chaque écriture s'exécute dans une seule transaction: rien n'est jamais appliqué partiellement
type MatchService struct {
	uow      sharedinfra.UnitOfWork
	matches  *infrastructure.MatchRepository
	products *cataloginfra.FinalProductRepository
	listings *cataloginfra.ListingQueryRepository
	log      *logger.Logger
}

// NewMatchService crée une nouvelle instance de MatchService
func NewMatchService(
	uow sharedinfra.UnitOfWork,
	matches *infrastructure.MatchRepository,
	products *cataloginfra.FinalProductRepository,
	listings *cataloginfra.ListingQueryRepository,
	log *logger.Logger,
) *MatchService {
	return &MatchService{
		uow:      uow,
		matches:  matches,
		products: products,
		listings: listings,
		log:      log.With("service", "matches"),
	}
}

// ReplaceMatches transforme l'ensemble des associations du produit final en l'ensemble souhaité
// Un second appel avec le même ensemble retourne {0, 0}
func (s *MatchService) ReplaceMatches(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	listingIDs []catalogdomain.ListingID,
) (domain.ReconcileResult, error) {
	const op = "matches.Replace"

	desired, err := domain.NormalizeListingIDs(op, listingIDs)
	if err != nil {
		return domain.ReconcileResult{}, err
	}

	var result domain.ReconcileResult
	err = s.uow.Execute(ctx, func(tx *sql.Tx) error {
		if err := s.checkReferences(ctx, tx, op, fp, desired); err != nil {
			return err
		}

		matches := s.matches.WithTx(tx)
		current, err := matches.ListingIDs(ctx, fp)
		if err != nil {
			return err
		}

		diff := domain.Diff(current, desired)
		if diff.IsEmpty() {
			return nil
		}

		removed, err := matches.DeleteListings(ctx, fp, diff.ToRemove)
		if err != nil {
			return err
		}
		added, err := matches.InsertListings(ctx, fp, diff.ToAdd)
		if err != nil {
			return err
		}

		result = domain.ReconcileResult{Added: added, Removed: removed}
		return nil
	})
	if err != nil {
		s.logFailure(op, fp, err)
		return domain.ReconcileResult{}, err
	}

	s.log.Info("matches replaced",
		"final_product_id", fp,
		"desired", len(desired),
		"added", result.Added,
		"removed", result.Removed,
	)
	return result, nil
}

// AddMatches insère les associations manquantes sans rien supprimer; les doublons sont ignorés
func (s *MatchService) AddMatches(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	listingIDs []catalogdomain.ListingID,
) (int, error) {
	const op = "matches.Add"

	desired, err := domain.NormalizeListingIDs(op, listingIDs)
	if err != nil {
		return 0, err
	}

	var added int
	err = s.uow.Execute(ctx, func(tx *sql.Tx) error {
		if err := s.checkReferences(ctx, tx, op, fp, desired); err != nil {
			return err
		}
		added, err = s.matches.WithTx(tx).InsertListings(ctx, fp, desired)
		return err
	})
	if err != nil {
		s.logFailure(op, fp, err)
		return 0, err
	}

	s.log.Info("matches added", "final_product_id", fp, "requested", len(desired), "added", added)
	return added, nil
}

// RemoveMatch supprime une association; InvalidReference si elle n'existe pas
func (s *MatchService) RemoveMatch(ctx context.Context, fp catalogdomain.FinalProductID, listing catalogdomain.ListingID) error {
	const op = "matches.Remove"

	deleted, err := s.matches.DeleteOne(ctx, fp, listing)
	if err != nil {
		s.logFailure(op, fp, err)
		return err
	}
	if !deleted {
		return shareddomain.InvalidReference(op, "listing %d is not matched to final product %d", listing, fp)
	}

	s.log.Info("match removed", "final_product_id", fp, "listing_id", listing)
	return nil
}

// GetMatchedListingIDs retourne les annonces associées au produit final (ordre croissant)
func (s *MatchService) GetMatchedListingIDs(ctx context.Context, fp catalogdomain.FinalProductID) ([]catalogdomain.ListingID, error) {
	exists, err := s.products.Exists(ctx, fp)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shareddomain.InvalidReference("matches.Get", "final product %d does not exist", fp)
	}
	return s.matches.ListingIDs(ctx, fp)
}

// checkReferences vérifie dans la transaction que le produit final et toutes les annonces existent
func (s *MatchService) checkReferences(
	ctx context.Context,
	tx *sql.Tx,
	op string,
	fp catalogdomain.FinalProductID,
	listingIDs []catalogdomain.ListingID,
) error {
	exists, err := s.products.WithTx(tx).Exists(ctx, fp)
	if err != nil {
		return err
	}
	if !exists {
		return shareddomain.InvalidReference(op, "final product %d does not exist", fp)
	}

	missing, err := s.listings.WithTx(tx).FindMissing(ctx, listingIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return shareddomain.InvalidReference(op, "listings do not exist: %v", missing)
	}
	return nil
}

func (s *MatchService) logFailure(op string, fp catalogdomain.FinalProductID, err error) {
	switch shareddomain.KindOf(err) {
	case shareddomain.KindInvalidReference, shareddomain.KindInvalidInput:
		s.log.Debug("match operation rejected", "op", op, "final_product_id", fp, "error", err)
	default:
		s.log.Error("match operation failed", "op", op, "final_product_id", fp, "error", err)
	}
}
