package domain

import (
	"strconv"
	"time"

	analyticsdomain "pricetrack/internal/analytics/domain"
	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// MaxProductsPerExport nombre maximal de produits finaux dans un export multi-produits
const MaxProductsPerExport = 50

// ExportKind représente le type d'export
type ExportKind string

const (
	ExportKindLowestMoment ExportKind = "lowest_moment"
	ExportKindCampaigns    ExportKind = "campaigns"
)

// ExportJob représente un job d'export
type ExportJob struct {
	kind            ExportKind
	finalProductIDs []catalogdomain.FinalProductID
	createdAt       time.Time
}

// NewExportJob crée un nouveau job d'export avec validation
// Les identifiants sont dédoublonnés en conservant l'ordre de la demande
func NewExportJob(kind ExportKind, ids []catalogdomain.FinalProductID) (*ExportJob, error) {
	const op = "export.NewJob"

	if kind != ExportKindLowestMoment && kind != ExportKindCampaigns {
		return nil, shareddomain.InvalidInput(op, "invalid export kind %q", kind)
	}
	if len(ids) == 0 {
		return nil, shareddomain.InvalidInput(op, "at least one final product id is required")
	}

	seen := make(map[catalogdomain.FinalProductID]struct{}, len(ids))
	unique := make([]catalogdomain.FinalProductID, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, shareddomain.InvalidInput(op, "final product id must be positive, got %d", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) > MaxProductsPerExport {
		return nil, shareddomain.InvalidInput(op, "at most %d final products per export, got %d", MaxProductsPerExport, len(unique))
	}

	return &ExportJob{
		kind:            kind,
		finalProductIDs: unique,
		createdAt:       time.Now(),
	}, nil
}

// Kind retourne le type d'export
func (ej *ExportJob) Kind() ExportKind {
	return ej.kind
}

// FinalProductIDs retourne les produits finaux exportés
func (ej *ExportJob) FinalProductIDs() []catalogdomain.FinalProductID {
	return append([]catalogdomain.FinalProductID{}, ej.finalProductIDs...)
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}

// Filename nom de fichier proposé pour le téléchargement
func (ej *ExportJob) Filename() string {
	name := string(ej.kind)
	if len(ej.finalProductIDs) == 1 {
		name += "_" + strconv.FormatInt(int64(ej.finalProductIDs[0]), 10)
	}
	return name + "_" + ej.createdAt.Format("20060102_150405") + ".csv"
}

const timeLayout = "2006-01-02 15:04:05"

// LowestMomentCSVHeaders retourne les en-têtes CSV du rapport de prix le plus bas
func LowestMomentCSVHeaders() []string {
	return []string{
		"final_product_id",
		"listing_id",
		"platform",
		"title",
		"lowest_price",
		"lowest_observed_at",
		"current_price",
		"price_difference",
		"price_difference_percentage",
		"days_since_lowest",
		"url",
	}
}

// LowestMomentRecord convertit une ligne du rapport en enregistrement CSV
func LowestMomentRecord(fp catalogdomain.FinalProductID, lm analyticsdomain.LowestMoment) []string {
	return []string{
		strconv.FormatInt(int64(fp), 10),
		strconv.FormatInt(int64(lm.Listing.ID), 10),
		textCell(lm.Listing.Platform),
		textCell(lm.Listing.Title),
		formatAmount(lm.LowestPrice),
		lm.LowestObservedAt.UTC().Format(timeLayout),
		formatAmount(lm.CurrentPrice),
		formatAmount(lm.PriceDifference),
		formatAmount(lm.PriceDifferencePercentage),
		strconv.Itoa(lm.DaysSinceLowest),
		textCell(lm.Listing.URL),
	}
}

// CampaignCSVHeaders retourne les en-têtes CSV des événements de campagne
func CampaignCSVHeaders() []string {
	return []string{
		"final_product_id",
		"listing_id",
		"platform",
		"title",
		"regular_price",
		"promo_price",
		"discount_percent",
		"tier",
		"confidence",
		"observed_at",
	}
}

// CampaignRecord convertit un événement en enregistrement CSV
func CampaignRecord(fp catalogdomain.FinalProductID, e analyticsdomain.CampaignEvent) []string {
	return []string{
		strconv.FormatInt(int64(fp), 10),
		strconv.FormatInt(int64(e.Listing.ID), 10),
		textCell(e.Listing.Platform),
		textCell(e.Listing.Title),
		formatAmount(e.RegularPrice),
		formatAmount(e.PromoPrice),
		formatAmount(e.DiscountPercent),
		string(e.Tier),
		string(e.Confidence),
		e.ObservedAt.UTC().Format(timeLayout),
	}
}

// textCell neutralise les cellules texte qu'un tableur interpréterait comme une formule
func textCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
