package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"pricetrack/internal/analytics/domain"
	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/shared/infrastructure"
)

// PriceQueryRepository requêtes de lecture sur l'historique de prix des annonces associées
type PriceQueryRepository struct {
	infrastructure.BaseRepository
}

// NewPriceQueryRepository crée un nouveau repository de prix
func NewPriceQueryRepository(db *sql.DB) *PriceQueryRepository {
	return &PriceQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// LowestMomentRow minimum et dernier prix positifs d'une annonce associée
type LowestMomentRow struct {
	Listing domain.ListingRef
	Lowest  domain.PriceObservation
	Latest  domain.PriceObservation
}

// CampaignCandidate observation pouvant constituer un événement de campagne
type CampaignCandidate struct {
	Listing     domain.ListingRef
	Observation domain.PriceObservation
}

// GetLowestMoments récupère, pour chaque annonce associée, son minimum historique et son dernier prix positifs
// Les annonces sans aucun prix positif sont exclues
func (r *PriceQueryRepository) GetLowestMoments(ctx context.Context, fp catalogdomain.FinalProductID) ([]LowestMomentRow, error) {
	query := `
		SELECT l.id, l.platform, COALESCE(l.title, ''), COALESCE(l.url, ''),
		       lo.price, lo.observed_at,
		       la.price, la.observed_at
		FROM final_product_matches m
		JOIN listings l ON l.id = m.listing_id
		JOIN LATERAL (
			SELECT po.price, po.observed_at
			FROM price_observations po
			WHERE po.listing_id = l.id AND po.price > 0
			ORDER BY po.price ASC, po.observed_at ASC, po.id ASC
			LIMIT 1
		) lo ON TRUE
		JOIN LATERAL (
			SELECT po.price, po.observed_at
			FROM price_observations po
			WHERE po.listing_id = l.id AND po.price > 0
			ORDER BY po.observed_at DESC, po.id DESC
			LIMIT 1
		) la ON TRUE
		WHERE m.final_product_id = $1
		ORDER BY lo.price ASC, l.id ASC
	`

	rows, err := r.Query(ctx, query, int64(fp))
	if err != nil {
		return nil, infrastructure.ClassifyError("prices.GetLowestMoments", err)
	}
	defer rows.Close()

	result := make([]LowestMomentRow, 0)
	for rows.Next() {
		var (
			row                 LowestMomentRow
			listingID           int64
			lowPrice, lastPrice float64
		)
		if err := rows.Scan(&listingID, &row.Listing.Platform, &row.Listing.Title, &row.Listing.URL,
			&lowPrice, &row.Lowest.ObservedAt, &lastPrice, &row.Latest.ObservedAt); err != nil {
			return nil, err
		}
		row.Listing.ID = catalogdomain.ListingID(listingID)
		row.Lowest.ListingID = row.Listing.ID
		row.Lowest.Price = shareddomain.NewPrice(lowPrice)
		row.Latest.ListingID = row.Listing.ID
		row.Latest.Price = shareddomain.NewPrice(lastPrice)
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetCampaignCandidates récupère les observations des annonces associées portant une promotion
// inférieure au prix normal dans la fenêtre; la règle de détection finale est appliquée par le domaine
// Une même paire (prix normal, prix promo) d'une annonce n'est retournée qu'une fois, la plus récente
func (r *PriceQueryRepository) GetCampaignCandidates(
	ctx context.Context,
	fp catalogdomain.FinalProductID,
	window shareddomain.DateRange,
	minDiscount float64,
) ([]CampaignCandidate, error) {
	query := `
		SELECT DISTINCT ON (l.id, po.price, po.promo_price)
		       l.id, l.platform, COALESCE(l.title, ''), COALESCE(l.url, ''),
		       po.price, po.promo_price, COALESCE(po.stock_status, ''), po.observed_at
		FROM final_product_matches m
		JOIN listings l ON l.id = m.listing_id
		JOIN price_observations po ON po.listing_id = l.id
		WHERE m.final_product_id = $1
		  AND po.price > 0
		  AND po.promo_price IS NOT NULL
		  AND po.promo_price > 0
		  AND po.promo_price < po.price
		  AND po.observed_at >= $2 AND po.observed_at <= $3
		  AND ROUND((po.price - po.promo_price) * 100 / po.price, 2) >= $4
		ORDER BY l.id, po.price, po.promo_price, po.observed_at DESC, po.id DESC
	`

	rows, err := r.Query(ctx, query, int64(fp), window.Start(), window.End(), minDiscount)
	if err != nil {
		return nil, infrastructure.ClassifyError("prices.GetCampaignCandidates", err)
	}
	defer rows.Close()

	result := make([]CampaignCandidate, 0)
	for rows.Next() {
		var (
			c         CampaignCandidate
			listingID int64
			price     sql.NullFloat64
			promo     sql.NullFloat64
		)
		if err := rows.Scan(&listingID, &c.Listing.Platform, &c.Listing.Title, &c.Listing.URL,
			&price, &promo, &c.Observation.StockStatus, &c.Observation.ObservedAt); err != nil {
			return nil, err
		}
		c.Listing.ID = catalogdomain.ListingID(listingID)
		c.Observation.ListingID = c.Listing.ID
		c.Observation.Price = shareddomain.PriceFromNull(price)
		c.Observation.PromoPrice = shareddomain.PriceFromNull(promo)
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetLatestPrices récupère le dernier prix positif de chaque annonce associée, avec ses étiquettes propres
func (r *PriceQueryRepository) GetLatestPrices(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.PricedListing, error) {
	query := `
		SELECT l.id, l.platform, COALESCE(l.title, ''), COALESCE(l.url, ''),
		       ARRAY(SELECT lt.tag_id FROM listing_tags lt WHERE lt.listing_id = l.id ORDER BY lt.tag_id),
		       la.price, la.observed_at
		FROM final_product_matches m
		JOIN listings l ON l.id = m.listing_id
		JOIN LATERAL (
			SELECT po.price, po.observed_at
			FROM price_observations po
			WHERE po.listing_id = l.id AND po.price > 0
			ORDER BY po.observed_at DESC, po.id DESC
			LIMIT 1
		) la ON TRUE
		WHERE m.final_product_id = $1
		ORDER BY l.id
	`

	rows, err := r.Query(ctx, query, int64(fp))
	if err != nil {
		return nil, infrastructure.ClassifyError("prices.GetLatestPrices", err)
	}
	defer rows.Close()

	result := make([]domain.PricedListing, 0)
	for rows.Next() {
		var (
			pl        domain.PricedListing
			listingID int64
			tagIDs    []int64
		)
		if err := rows.Scan(&listingID, &pl.Listing.Platform, &pl.Listing.Title, &pl.Listing.URL,
			pq.Array(&tagIDs), &pl.LatestPrice, &pl.ObservedAt); err != nil {
			return nil, err
		}
		pl.Listing.ID = catalogdomain.ListingID(listingID)
		pl.TagIDs = make([]catalogdomain.TagID, len(tagIDs))
		for i, t := range tagIDs {
			pl.TagIDs[i] = catalogdomain.TagID(t)
		}
		result = append(result, pl)
	}
	return result, rows.Err()
}

// GetLatestObservations récupère la dernière observation (quelle qu'elle soit) de chaque annonce associée
// Une annonce sans observation est retournée avec Latest à nil
func (r *PriceQueryRepository) GetLatestObservations(ctx context.Context, fp catalogdomain.FinalProductID) ([]domain.LowestPriceEntry, error) {
	query := `
		SELECT l.id, l.platform, COALESCE(l.title, ''), COALESCE(l.url, ''),
		       la.price, la.promo_price, la.stock_status, la.observed_at
		FROM final_product_matches m
		JOIN listings l ON l.id = m.listing_id
		LEFT JOIN LATERAL (
			SELECT po.price, po.promo_price, COALESCE(po.stock_status, '') AS stock_status, po.observed_at
			FROM price_observations po
			WHERE po.listing_id = l.id
			ORDER BY po.observed_at DESC, po.id DESC
			LIMIT 1
		) la ON TRUE
		WHERE m.final_product_id = $1
	`

	rows, err := r.Query(ctx, query, int64(fp))
	if err != nil {
		return nil, infrastructure.ClassifyError("prices.GetLatestObservations", err)
	}
	defer rows.Close()

	result := make([]domain.LowestPriceEntry, 0)
	for rows.Next() {
		var (
			ref        domain.ListingRef
			listingID  int64
			price      sql.NullFloat64
			promo      sql.NullFloat64
			stock      sql.NullString
			observedAt sql.NullTime
		)
		if err := rows.Scan(&listingID, &ref.Platform, &ref.Title, &ref.URL,
			&price, &promo, &stock, &observedAt); err != nil {
			return nil, err
		}
		ref.ID = catalogdomain.ListingID(listingID)

		var latest *domain.PriceObservation
		if observedAt.Valid {
			latest = &domain.PriceObservation{
				ListingID:   ref.ID,
				Price:       shareddomain.PriceFromNull(price),
				PromoPrice:  shareddomain.PriceFromNull(promo),
				StockStatus: stock.String,
				ObservedAt:  observedAt.Time,
			}
		}
		result = append(result, domain.NewLowestPriceEntry(ref, latest))
	}
	return result, rows.Err()
}

// GetPriceHistory récupère l'annonce et toutes ses observations par date croissante
func (r *PriceQueryRepository) GetPriceHistory(ctx context.Context, listingID catalogdomain.ListingID) (domain.ListingRef, []domain.PriceObservation, error) {
	var ref domain.ListingRef
	var id int64
	err := r.QueryRow(ctx,
		`SELECT id, platform, COALESCE(title, ''), COALESCE(url, '') FROM listings WHERE id = $1`,
		int64(listingID)).Scan(&id, &ref.Platform, &ref.Title, &ref.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return ref, nil, shareddomain.InvalidReference("prices.GetPriceHistory", "listing %d does not exist", listingID)
	}
	if err != nil {
		return ref, nil, infrastructure.ClassifyError("prices.GetPriceHistory", err)
	}
	ref.ID = catalogdomain.ListingID(id)

	rows, err := r.Query(ctx, `
		SELECT price, promo_price, COALESCE(stock_status, ''), observed_at
		FROM price_observations
		WHERE listing_id = $1
		ORDER BY observed_at ASC, id ASC
	`, int64(listingID))
	if err != nil {
		return ref, nil, infrastructure.ClassifyError("prices.GetPriceHistory", err)
	}
	defer rows.Close()

	history := make([]domain.PriceObservation, 0)
	for rows.Next() {
		var (
			price, promo sql.NullFloat64
			o            domain.PriceObservation
		)
		if err := rows.Scan(&price, &promo, &o.StockStatus, &o.ObservedAt); err != nil {
			return ref, nil, err
		}
		o.ListingID = ref.ID
		o.Price = shareddomain.PriceFromNull(price)
		o.PromoPrice = shareddomain.PriceFromNull(promo)
		history = append(history, o)
	}
	return ref, history, rows.Err()
}

// GetStockStatus récupère l'annonce et l'état de stock de sa dernière observation
// Une annonce sans observation est retournée avec ObservedAt à nil
func (r *PriceQueryRepository) GetStockStatus(ctx context.Context, listingID catalogdomain.ListingID) (domain.StockStatus, error) {
	query := `
		SELECT l.id, l.platform, COALESCE(l.title, ''), COALESCE(l.url, ''),
		       la.stock_status, la.observed_at
		FROM listings l
		LEFT JOIN LATERAL (
			SELECT COALESCE(po.stock_status, '') AS stock_status, po.observed_at
			FROM price_observations po
			WHERE po.listing_id = l.id
			ORDER BY po.observed_at DESC, po.id DESC
			LIMIT 1
		) la ON TRUE
		WHERE l.id = $1
	`

	var (
		st         domain.StockStatus
		id         int64
		stock      sql.NullString
		observedAt sql.NullTime
	)
	err := r.QueryRow(ctx, query, int64(listingID)).Scan(&id, &st.Listing.Platform, &st.Listing.Title, &st.Listing.URL, &stock, &observedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, shareddomain.InvalidReference("prices.GetStockStatus", "listing %d does not exist", listingID)
	}
	if err != nil {
		return st, infrastructure.ClassifyError("prices.GetStockStatus", err)
	}

	st.Listing.ID = catalogdomain.ListingID(id)
	st.Status = stock.String
	if observedAt.Valid {
		t := observedAt.Time
		st.ObservedAt = &t
	}
	return st, nil
}

// GetTagPrices moyenne des prix positifs observés sur les annonces associées
// de chaque produit final portant l'étiquette; les produits sans prix sont absents
func (r *PriceQueryRepository) GetTagPrices(ctx context.Context, tag catalogdomain.TagID) ([]domain.TagPrice, error) {
	query := `
		SELECT f.id, f.name, COUNT(DISTINCT m.listing_id), COUNT(po.id), AVG(po.price)
		FROM final_product_tags ft
		JOIN final_products f ON f.id = ft.final_product_id
		JOIN final_product_matches m ON m.final_product_id = f.id
		JOIN price_observations po ON po.listing_id = m.listing_id AND po.price > 0
		WHERE ft.tag_id = $1
		GROUP BY f.id, f.name
		ORDER BY f.id
	`

	rows, err := r.Query(ctx, query, int64(tag))
	if err != nil {
		return nil, infrastructure.ClassifyError("prices.GetTagPrices", err)
	}
	defer rows.Close()

	result := make([]domain.TagPrice, 0)
	for rows.Next() {
		var (
			fp           int64
			name         string
			listings     int
			observations int
			avg          float64
		)
		if err := rows.Scan(&fp, &name, &listings, &observations, &avg); err != nil {
			return nil, err
		}
		result = append(result, domain.NewTagPrice(catalogdomain.FinalProductID(fp), name, listings, observations, avg))
	}
	return result, rows.Err()
}
