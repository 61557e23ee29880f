package domain

import (
	"math"
	"sort"
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// PricedListing annonce associée avec son dernier prix positif
type PricedListing struct {
	Listing     ListingRef
	TagIDs      []catalogdomain.TagID
	LatestPrice float64
	ObservedAt  time.Time
}

// PlatformAverage statistiques des derniers prix par plateforme
type PlatformAverage struct {
	Platform     string  `json:"platform"`
	ListingCount int     `json:"listing_count"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// TagAverage statistiques des derniers prix par étiquette du produit final
type TagAverage struct {
	TagID              catalogdomain.TagID `json:"tag_id"`
	TagName            string              `json:"tag_name"`
	ListingCount       int                 `json:"listing_count"`
	AveragePrice       float64             `json:"average_price"`
	MinPrice           float64             `json:"min_price"`
	MaxPrice           float64             `json:"max_price"`
	Variance           float64             `json:"variance"`
	MostCommonPlatform string              `json:"most_common_platform"`
}

// priceSummary statistiques descriptives d'un groupe de prix
type priceSummary struct {
	count    int
	mean     float64
	min      float64
	max      float64
	variance float64
}

// summarize calcule moyenne, min, max et variance d'échantillon (n-1, 0 pour n<2)
func summarize(prices []float64) priceSummary {
	if len(prices) == 0 {
		return priceSummary{}
	}
	s := priceSummary{count: len(prices), min: math.Inf(1), max: math.Inf(-1)}
	var sum float64
	for _, p := range prices {
		sum += p
		s.min = math.Min(s.min, p)
		s.max = math.Max(s.max, p)
	}
	s.mean = shareddomain.SafeMean(sum, len(prices))
	if len(prices) > 1 {
		var sq float64
		for _, p := range prices {
			sq += (p - s.mean) * (p - s.mean)
		}
		s.variance = sq / float64(len(prices)-1)
	}
	return s
}

// ComputePlatformAverages groupe les annonces par plateforme (tri par nom de plateforme)
// Les annonces sans prix positif sont ignorées
func ComputePlatformAverages(listings []PricedListing) []PlatformAverage {
	groups := make(map[string][]float64)
	for _, l := range listings {
		if l.LatestPrice <= 0 {
			continue
		}
		p := l.Listing.PlatformOrUnknown()
		groups[p] = append(groups[p], l.LatestPrice)
	}

	out := make([]PlatformAverage, 0, len(groups))
	for platform, prices := range groups {
		s := summarize(prices)
		out = append(out, PlatformAverage{
			Platform:     platform,
			ListingCount: s.count,
			AveragePrice: shareddomain.Round2(s.mean),
			MinPrice:     s.min,
			MaxPrice:     s.max,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

// BelongsToTag vérifie si une annonce entre dans le groupe de l'étiquette du produit final
// Une annonce sans étiquette propre hérite de toutes les étiquettes du produit final
func BelongsToTag(l PricedListing, tag catalogdomain.TagID) bool {
	if len(l.TagIDs) == 0 {
		return true
	}
	for _, t := range l.TagIDs {
		if t == tag {
			return true
		}
	}
	return false
}

// ComputeTagAverages groupe les annonces par étiquette du produit final
// Une annonce peut apparaître dans plusieurs groupes; un groupe sans prix est omis
// Tri par moyenne décroissante puis par identifiant d'étiquette
func ComputeTagAverages(productTags []catalogdomain.TagID, listings []PricedListing, names map[catalogdomain.TagID]string) []TagAverage {
	seen := make(map[catalogdomain.TagID]struct{}, len(productTags))
	out := make([]TagAverage, 0, len(productTags))

	for _, tag := range productTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}

		var prices []float64
		platforms := make(map[string]int)
		for _, l := range listings {
			if l.LatestPrice <= 0 || !BelongsToTag(l, tag) {
				continue
			}
			prices = append(prices, l.LatestPrice)
			platforms[l.Listing.PlatformOrUnknown()]++
		}
		if len(prices) == 0 {
			continue
		}

		s := summarize(prices)
		out = append(out, TagAverage{
			TagID:              tag,
			TagName:            names[tag],
			ListingCount:       s.count,
			AveragePrice:       shareddomain.Round2(s.mean),
			MinPrice:           s.min,
			MaxPrice:           s.max,
			Variance:           shareddomain.Round2(s.variance),
			MostCommonPlatform: MostCommon(platforms),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AveragePrice != out[j].AveragePrice {
			return out[i].AveragePrice > out[j].AveragePrice
		}
		return out[i].TagID < out[j].TagID
	})
	return out
}

// MostCommon retourne la clé la plus fréquente; à égalité, la plus petite lexicographiquement
func MostCommon(counts map[string]int) string {
	best, bestCount := "", 0
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best, bestCount = k, n
		}
	}
	return best
}

// TagPrice prix moyen observé d'un produit final portant une étiquette donnée
type TagPrice struct {
	FinalProductID   catalogdomain.FinalProductID `json:"final_product_id"`
	Name             string                       `json:"name"`
	ListingCount     int                          `json:"listing_count"`
	ObservationCount int                          `json:"observation_count"`
	AveragePrice     float64                      `json:"average_price"`
}

// NewTagPrice construit la ligne avec une moyenne arrondie à deux décimales
func NewTagPrice(fp catalogdomain.FinalProductID, name string, listings, observations int, average float64) TagPrice {
	return TagPrice{
		FinalProductID:   fp,
		Name:             name,
		ListingCount:     listings,
		ObservationCount: observations,
		AveragePrice:     shareddomain.Round2(average),
	}
}

// TagPriceReport prix moyens des produits finaux d'une étiquette, par identifiant croissant
type TagPriceReport struct {
	TagID    catalogdomain.TagID `json:"tag_id"`
	TagName  string              `json:"tag_name"`
	Products []TagPrice          `json:"products"`
}
