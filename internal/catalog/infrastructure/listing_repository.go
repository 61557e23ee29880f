package infrastructure

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"pricetrack/internal/catalog/domain"
	"pricetrack/internal/shared/infrastructure"
)

// ListingQueryRepository repository de lecture des annonces brutes
type ListingQueryRepository struct {
	infrastructure.BaseRepository
}

// NewListingQueryRepository crée un nouveau repository de lecture des annonces
func NewListingQueryRepository(db *sql.DB) *ListingQueryRepository {
	return &ListingQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository exécutant dans la transaction
func (r *ListingQueryRepository) WithTx(tx *sql.Tx) *ListingQueryRepository {
	return &ListingQueryRepository{BaseRepository: r.BaseRepository.Bind(tx)}
}

// FindMissing retourne, parmi ids, ceux qui ne référencent aucune annonce (ordre croissant)
func (r *ListingQueryRepository) FindMissing(ctx context.Context, ids []domain.ListingID) ([]domain.ListingID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	query := `
		SELECT x.id
		FROM unnest($1::bigint[]) AS x(id)
		WHERE NOT EXISTS (SELECT 1 FROM listings l WHERE l.id = x.id)
		ORDER BY x.id
	`
	rows, err := r.Query(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, infrastructure.ClassifyError("listings.FindMissing", err)
	}
	defer rows.Close()

	var missing []domain.ListingID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, domain.ListingID(id))
	}
	return missing, rows.Err()
}
