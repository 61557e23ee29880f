package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	catalogdomain "pricetrack/internal/catalog/domain"
	"pricetrack/internal/matching/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/shared/infrastructure"
)

// CandidateQueryRepository requêtes de lecture du sélecteur de candidats
type CandidateQueryRepository struct {
	infrastructure.BaseRepository
}

// NewCandidateQueryRepository crée un nouveau repository de candidats
func NewCandidateQueryRepository(db *sql.DB) *CandidateQueryRepository {
	return &CandidateQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository exécutant dans la transaction
func (r *CandidateQueryRepository) WithTx(tx *sql.Tx) *CandidateQueryRepository {
	return &CandidateQueryRepository{BaseRepository: r.BaseRepository.Bind(tx)}
}

// candidateWhere construit la clause WHERE commune au comptage et à la page
// $1 est toujours l'identifiant du produit final
func candidateWhere(fp catalogdomain.FinalProductID, filter domain.CandidateFilter) (string, []interface{}) {
	args := []interface{}{int64(fp)}
	conds := []string{`(
		EXISTS (SELECT 1 FROM final_product_matches m WHERE m.listing_id = l.id AND m.final_product_id = $1)
		OR NOT EXISTS (SELECT 1 FROM final_product_matches m WHERE m.listing_id = l.id)
	)`}

	if filter.Platform != "" {
		args = append(args, filter.Platform)
		conds = append(conds, fmt.Sprintf("l.platform = $%d", len(args)))
	}
	if filter.ListingType != "" {
		args = append(args, domain.ContainsPattern(filter.ListingType))
		conds = append(conds, fmt.Sprintf("l.listing_type ILIKE $%d", len(args)))
	}
	if filter.SearchText != "" {
		args = append(args, domain.ContainsPattern(filter.SearchText))
		conds = append(conds, fmt.Sprintf("(l.title ILIKE $%d OR l.brand ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// Count retourne le nombre de candidats éligibles après filtres
func (r *CandidateQueryRepository) Count(ctx context.Context, fp catalogdomain.FinalProductID, filter domain.CandidateFilter) (int, error) {
	where, args := candidateWhere(fp, filter)

	var total int
	if err := r.QueryRow(ctx, `SELECT COUNT(*) FROM listings l WHERE `+where, args...).Scan(&total); err != nil {
		return 0, infrastructure.ClassifyError("candidates.Count", err)
	}
	return total, nil
}

// Find retourne une page de candidats: associés d'abord, puis les plus récemment ingérés
func (r *CandidateQueryRepository) Find(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	filter domain.CandidateFilter,
	page shareddomain.Page,
) ([]domain.Candidate, error) {
	where, args := candidateWhere(fp, filter)
	args = append(args, page.Size(), page.Offset())

	query := fmt.Sprintf(`
		SELECT l.id, l.platform, l.platform_listing_id, COALESCE(l.title, ''), COALESCE(l.brand, ''),
		       COALESCE(l.url, ''), COALESCE(l.listing_type, ''), l.created_at,
		       ARRAY(SELECT lt.tag_id FROM listing_tags lt WHERE lt.listing_id = l.id ORDER BY lt.tag_id),
		       (SELECT po.price FROM price_observations po
		         WHERE po.listing_id = l.id
		         ORDER BY po.observed_at DESC, po.id DESC
		         LIMIT 1) AS latest_price,
		       EXISTS (SELECT 1 FROM final_product_matches m
		                WHERE m.listing_id = l.id AND m.final_product_id = $1) AS is_currently_matched
		FROM listings l
		WHERE %s
		ORDER BY is_currently_matched DESC, l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, infrastructure.ClassifyError("candidates.Find", err)
	}
	defer rows.Close()

	candidates := make([]domain.Candidate, 0, page.Size())
	for rows.Next() {
		var (
			id          int64
			platform    string
			externalID  string
			title       string
			brand       string
			url         string
			listingType string
			createdAt   time.Time
			tagIDs      []int64
			latest      sql.NullFloat64
			matched     bool
		)
		if err := rows.Scan(&id, &platform, &externalID, &title, &brand, &url, &listingType, &createdAt,
			pq.Array(&tagIDs), &latest, &matched); err != nil {
			return nil, err
		}

		listing, err := catalogdomain.NewRawListing(catalogdomain.ListingID(id), catalogdomain.Platform(platform),
			externalID, title, brand, url, listingType, createdAt)
		if err != nil {
			return nil, err
		}
		tags := make([]catalogdomain.TagID, len(tagIDs))
		for i, t := range tagIDs {
			tags[i] = catalogdomain.TagID(t)
		}
		listing.SetTagIDs(tags)

		candidates = append(candidates, domain.Candidate{
			Listing:            listing,
			LatestPrice:        shareddomain.PriceFromNull(latest),
			IsCurrentlyMatched: matched,
		})
	}
	return candidates, rows.Err()
}
