package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
	"pricetrack/internal/shared/infrastructure"
)

const finalProductColumns = `
	fp.id, fp.name, COALESCE(fp.brand, ''), fp.category_id,
	fp.price, fp.campaign_price, COALESCE(fp.external_id, ''), fp.created_at,
	ARRAY(SELECT fpt.tag_id FROM final_product_tags fpt WHERE fpt.final_product_id = fp.id ORDER BY fpt.tag_id)
`

// FinalProductRepository repository des produits finaux (lecture et suppression)
type FinalProductRepository struct {
	infrastructure.BaseRepository
}

// NewFinalProductRepository crée un nouveau repository de produits finaux
func NewFinalProductRepository(db *sql.DB) *FinalProductRepository {
	return &FinalProductRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository exécutant dans la transaction
func (r *FinalProductRepository) WithTx(tx *sql.Tx) *FinalProductRepository {
	return &FinalProductRepository{BaseRepository: r.BaseRepository.Bind(tx)}
}

// Exists vérifie l'existence d'un produit final
func (r *FinalProductRepository) Exists(ctx context.Context, id domain.FinalProductID) (bool, error) {
	exists, err := r.BaseRepository.Exists(ctx, `SELECT EXISTS(SELECT 1 FROM final_products WHERE id = $1)`, int64(id))
	if err != nil {
		return false, infrastructure.ClassifyError("finalProducts.Exists", err)
	}
	return exists, nil
}

// FindByID trouve un produit final par son ID; InvalidReference s'il n'existe pas
func (r *FinalProductRepository) FindByID(ctx context.Context, id domain.FinalProductID) (*domain.FinalProduct, error) {
	query := `SELECT ` + finalProductColumns + ` FROM final_products fp WHERE fp.id = $1`
	product, err := scanFinalProduct(r.QueryRow(ctx, query, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shareddomain.InvalidReference("finalProducts.FindByID", "final product %d does not exist", id)
	}
	if err != nil {
		return nil, infrastructure.ClassifyError("finalProducts.FindByID", err)
	}
	return product, nil
}

// FindForUpdate verrouille la ligne du produit final pendant la transaction courante
func (r *FinalProductRepository) FindForUpdate(ctx context.Context, id domain.FinalProductID) (*domain.FinalProduct, error) {
	query := `SELECT ` + finalProductColumns + ` FROM final_products fp WHERE fp.id = $1 FOR UPDATE OF fp`
	product, err := scanFinalProduct(r.QueryRow(ctx, query, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shareddomain.InvalidReference("finalProducts.FindForUpdate", "final product %d does not exist", id)
	}
	if err != nil {
		return nil, infrastructure.ClassifyError("finalProducts.FindForUpdate", err)
	}
	return product, nil
}

// List retourne une page de produits finaux avec leur nombre d'annonces associées, et le total
func (r *FinalProductRepository) List(ctx context.Context, page shareddomain.Page) ([]domain.FinalProductSummary, int, error) {
	var total int
	if err := r.QueryRow(ctx, `SELECT COUNT(*) FROM final_products`).Scan(&total); err != nil {
		return nil, 0, infrastructure.ClassifyError("finalProducts.List", err)
	}

	query := `
		SELECT ` + finalProductColumns + `,
		       (SELECT COUNT(*) FROM final_product_matches m WHERE m.final_product_id = fp.id) AS matched_count
		FROM final_products fp
		ORDER BY fp.created_at DESC, fp.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.Query(ctx, query, page.Size(), page.Offset())
	if err != nil {
		return nil, 0, infrastructure.ClassifyError("finalProducts.List", err)
	}
	defer rows.Close()

	summaries := make([]domain.FinalProductSummary, 0, page.Size())
	for rows.Next() {
		var matched int
		product, err := scanFinalProduct(rows, &matched)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, domain.FinalProductSummary{Product: product, MatchedCount: matched})
	}
	return summaries, total, rows.Err()
}

// DeleteMatches supprime toutes les associations du produit final
func (r *FinalProductRepository) DeleteMatches(ctx context.Context, id domain.FinalProductID) (int64, error) {
	return r.execCount(ctx, "finalProducts.DeleteMatches", `DELETE FROM final_product_matches WHERE final_product_id = $1`, int64(id))
}

// DeleteTagLinks supprime les liens étiquettes du produit final
func (r *FinalProductRepository) DeleteTagLinks(ctx context.Context, id domain.FinalProductID) (int64, error) {
	return r.execCount(ctx, "finalProducts.DeleteTagLinks", `DELETE FROM final_product_tags WHERE final_product_id = $1`, int64(id))
}

// Delete supprime la ligne du produit final
func (r *FinalProductRepository) Delete(ctx context.Context, id domain.FinalProductID) (int64, error) {
	return r.execCount(ctx, "finalProducts.Delete", `DELETE FROM final_products WHERE id = $1`, int64(id))
}

func (r *FinalProductRepository) execCount(ctx context.Context, op string, query string, args ...interface{}) (int64, error) {
	res, err := r.Exec(ctx, query, args...)
	if err != nil {
		return 0, infrastructure.ClassifyError(op, err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanFinalProduct lit les colonnes de finalProductColumns, suivies des colonnes extra éventuelles
func scanFinalProduct(row rowScanner, extra ...interface{}) (*domain.FinalProduct, error) {
	var (
		id            int64
		name          string
		brand         string
		categoryID    sql.NullInt64
		price         sql.NullFloat64
		campaignPrice sql.NullFloat64
		externalID    string
		createdAt     time.Time
		tagIDs        []int64
	)

	dest := []interface{}{&id, &name, &brand, &categoryID, &price, &campaignPrice, &externalID, &createdAt, pq.Array(&tagIDs)}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var category *domain.CategoryID
	if categoryID.Valid {
		c := domain.CategoryID(categoryID.Int64)
		category = &c
	}
	tags := make([]domain.TagID, len(tagIDs))
	for i, t := range tagIDs {
		tags[i] = domain.TagID(t)
	}

	return domain.NewFinalProduct(
		domain.FinalProductID(id),
		name,
		brand,
		category,
		tags,
		shareddomain.PriceFromNull(price),
		shareddomain.PriceFromNull(campaignPrice),
		externalID,
		createdAt,
	)
}
