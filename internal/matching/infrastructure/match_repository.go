package infrastructure

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/shared/infrastructure"
)

// MatchRepository accès à la table d'associations final_product_matches
type MatchRepository struct {
	infrastructure.BaseRepository
}

// NewMatchRepository crée un nouveau repository d'associations
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository exécutant dans la transaction
func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{BaseRepository: r.BaseRepository.Bind(tx)}
}

// ListingIDs retourne les annonces associées au produit final (ordre croissant)
func (r *MatchRepository) ListingIDs(ctx context.Context, fp catalogdomain.FinalProductID) ([]catalogdomain.ListingID, error) {
	rows, err := r.Query(ctx,
		`SELECT listing_id FROM final_product_matches WHERE final_product_id = $1 ORDER BY listing_id`, int64(fp))
	if err != nil {
		return nil, infrastructure.ClassifyError("matches.ListingIDs", err)
	}
	defer rows.Close()

	ids := make([]catalogdomain.ListingID, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, catalogdomain.ListingID(id))
	}
	return ids, rows.Err()
}

// DeleteListings supprime les associations (fp, id) pour chaque id; retourne le nombre de lignes supprimées
func (r *MatchRepository) DeleteListings(ctx context.Context, fp catalogdomain.FinalProductID, ids []catalogdomain.ListingID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.Exec(ctx,
		`DELETE FROM final_product_matches WHERE final_product_id = $1 AND listing_id = ANY($2)`,
		int64(fp), pq.Array(toInt64s(ids)))
	if err != nil {
		return 0, infrastructure.ClassifyError("matches.DeleteListings", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// InsertListings insère les associations (fp, id); une paire déjà présente est ignorée
// Retourne le nombre de lignes réellement insérées
func (r *MatchRepository) InsertListings(ctx context.Context, fp catalogdomain.FinalProductID, ids []catalogdomain.ListingID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.Exec(ctx, `
		INSERT INTO final_product_matches (final_product_id, listing_id)
		SELECT $1, x.id FROM unnest($2::bigint[]) AS x(id)
		ON CONFLICT (final_product_id, listing_id) DO NOTHING
	`, int64(fp), pq.Array(toInt64s(ids)))
	if err != nil {
		if infrastructure.IsForeignKeyViolation(err) {
			return 0, shareddomain.NewError(shareddomain.KindInvalidReference, "matches.InsertListings",
				"final product or listing does not exist", err)
		}
		return 0, infrastructure.ClassifyError("matches.InsertListings", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// DeleteOne supprime une association unique; retourne false si elle n'existait pas
func (r *MatchRepository) DeleteOne(ctx context.Context, fp catalogdomain.FinalProductID, listing catalogdomain.ListingID) (bool, error) {
	res, err := r.Exec(ctx,
		`DELETE FROM final_product_matches WHERE final_product_id = $1 AND listing_id = $2`,
		int64(fp), int64(listing))
	if err != nil {
		return false, infrastructure.ClassifyError("matches.DeleteOne", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func toInt64s(ids []catalogdomain.ListingID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
