package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"pricetrack/internal/catalog/domain"
	"pricetrack/internal/shared/infrastructure"
)

// CatalogQueryRepository lit les étiquettes et catégories dans le store
type CatalogQueryRepository struct {
	infrastructure.BaseRepository
}

// NewCatalogQueryRepository crée un nouveau repository de lecture du catalogue
func NewCatalogQueryRepository(db *sql.DB) *CatalogQueryRepository {
	return &CatalogQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// TagNames retourne le nom de chaque étiquette demandée; les identifiants inconnus sont absents du résultat
func (r *CatalogQueryRepository) TagNames(ctx context.Context, ids []domain.TagID) (map[domain.TagID]string, error) {
	names := make(map[domain.TagID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.Query(ctx, `SELECT id, name FROM tags WHERE id = ANY($1)`, pq.Array(tagIDsToInt64(ids)))
	if err != nil {
		return nil, infrastructure.ClassifyError("catalog.TagNames", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[domain.TagID(id)] = name
	}
	return names, rows.Err()
}

// CategoryName retourne le nom d'une catégorie
func (r *CatalogQueryRepository) CategoryName(ctx context.Context, id domain.CategoryID) (string, bool, error) {
	var name string
	err := r.QueryRow(ctx, `SELECT name FROM categories WHERE id = $1`, int64(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, infrastructure.ClassifyError("catalog.CategoryName", err)
	}
	return name, true, nil
}

// CachedCatalog lecture traversante du catalogue avec expiration
// Les étiquettes changent rarement: un TTL de quelques minutes suffit
type CachedCatalog struct {
	source     domain.Catalog
	tags       *infrastructure.TTLCache[domain.TagID, string]
	categories *infrastructure.TTLCache[domain.CategoryID, string]
}

// NewCachedCatalog enveloppe un Catalog avec un cache TTL
func NewCachedCatalog(source domain.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		source:     source,
		tags:       infrastructure.NewTTLCache[domain.TagID, string](ttl),
		categories: infrastructure.NewTTLCache[domain.CategoryID, string](ttl),
	}
}

// TagNames sert depuis le cache et ne va au store que pour les identifiants manquants
func (c *CachedCatalog) TagNames(ctx context.Context, ids []domain.TagID) (map[domain.TagID]string, error) {
	names := make(map[domain.TagID]string, len(ids))
	var missing []domain.TagID
	for _, id := range ids {
		if name, ok := c.tags.Get(id); ok {
			names[id] = name
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}

	loaded, err := c.source.TagNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range loaded {
		c.tags.Set(id, name)
		names[id] = name
	}
	return names, nil
}

// errCategoryNotFound signale au cache qu'il n'y a rien à mémoriser
var errCategoryNotFound = errors.New("category not found")

// CategoryName sert depuis le cache, sinon lit le store; une catégorie absente n'est pas mise en cache
func (c *CachedCatalog) CategoryName(ctx context.Context, id domain.CategoryID) (string, bool, error) {
	name, err := c.categories.GetOrLoad(ctx, id, func(ctx context.Context) (string, error) {
		name, ok, err := c.source.CategoryName(ctx, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errCategoryNotFound
		}
		return name, nil
	})
	if errors.Is(err, errCategoryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// Close arrête le nettoyage des caches
func (c *CachedCatalog) Close() {
	c.tags.Close()
	c.categories.Close()
}

func tagIDsToInt64(ids []domain.TagID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
