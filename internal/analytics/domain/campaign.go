package domain

import (
	"sort"
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

const (
	DefaultMinDiscountPercent = 1.0
	DefaultLookbackDays       = 30
)

// CampaignTier classification d'une remise par ampleur
type CampaignTier string

const (
	TierFlashSale       CampaignTier = "flash_sale"
	TierSuddenDrop      CampaignTier = "sudden_drop"
	TierRegularDiscount CampaignTier = "regular_discount"
	TierMinorDiscount   CampaignTier = "minor_discount"
)

// CampaignTiers tous les paliers, du plus fort au plus faible
var CampaignTiers = []CampaignTier{TierFlashSale, TierSuddenDrop, TierRegularDiscount, TierMinorDiscount}

// Confidence niveau de confiance d'un événement de campagne
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidences tous les niveaux, du plus fort au plus faible
var Confidences = []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}

// ClassifyTier classe une remise (en %): >=70 flash_sale, >=40 sudden_drop, >=10 regular_discount
func ClassifyTier(discountPercent float64) CampaignTier {
	switch {
	case discountPercent >= 70:
		return TierFlashSale
	case discountPercent >= 40:
		return TierSuddenDrop
	case discountPercent >= 10:
		return TierRegularDiscount
	default:
		return TierMinorDiscount
	}
}

// ClassifyConfidence classe une remise (en %): >=50 high, >=25 medium
func ClassifyConfidence(discountPercent float64) Confidence {
	switch {
	case discountPercent >= 50:
		return ConfidenceHigh
	case discountPercent >= 25:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CampaignParams paramètres de détection
type CampaignParams struct {
	MinDiscountPercent float64
	LookbackDays       int
}

// DefaultCampaignParams paramètres par défaut (1%, 30 jours)
func DefaultCampaignParams() CampaignParams {
	return CampaignParams{MinDiscountPercent: DefaultMinDiscountPercent, LookbackDays: DefaultLookbackDays}
}

// Validate vérifie les bornes des paramètres
func (p CampaignParams) Validate() error {
	if p.LookbackDays < 0 {
		return shareddomain.InvalidInput("campaigns.Detect", "lookback days cannot be negative, got %d", p.LookbackDays)
	}
	if p.MinDiscountPercent < 0 || p.MinDiscountPercent > 100 {
		return shareddomain.InvalidInput("campaigns.Detect", "min discount must be within [0, 100], got %g", p.MinDiscountPercent)
	}
	return nil
}

// CampaignEvent observation interprétée comme une remise promotionnelle active
type CampaignEvent struct {
	Listing         ListingRef   `json:"listing"`
	RegularPrice    float64      `json:"regular_price"`
	PromoPrice      float64      `json:"promo_price"`
	DiscountAmount  float64      `json:"discount_amount"`
	DiscountPercent float64      `json:"discount_percent"`
	Tier            CampaignTier `json:"tier"`
	Confidence      Confidence   `json:"confidence"`
	ObservedAt      time.Time    `json:"observed_at"`
}

// NewCampaignEvent applique la règle de détection à une observation
// Sans promotion distincte (absente, nulle ou >= prix normal) il n'y a jamais d'événement
func NewCampaignEvent(listing ListingRef, o PriceObservation, window shareddomain.DateRange, minDiscount float64) (CampaignEvent, bool) {
	if !o.HasActivePromotion() {
		return CampaignEvent{}, false
	}
	if !window.Contains(o.ObservedAt) {
		return CampaignEvent{}, false
	}

	// Classement sur la remise arrondie à deux décimales, comme le préfiltre SQL
	regular, promo := o.Price.Amount(), o.PromoPrice.Amount()
	discount := shareddomain.DiscountPercent(regular, promo)
	if discount < minDiscount {
		return CampaignEvent{}, false
	}

	return CampaignEvent{
		Listing:         listing,
		RegularPrice:    regular,
		PromoPrice:      promo,
		DiscountAmount:  shareddomain.Difference(regular, promo),
		DiscountPercent: discount,
		Tier:            ClassifyTier(discount),
		Confidence:      ClassifyConfidence(discount),
		ObservedAt:      o.ObservedAt,
	}, true
}

type promotionKey struct {
	listing catalogdomain.ListingID
	regular float64
	promo   float64
}

// LatestPerPromotion garde un seul événement par (annonce, prix normal, prix promo), le plus récent
// Une promotion relevée chaque jour reste une seule campagne
func LatestPerPromotion(events []CampaignEvent) []CampaignEvent {
	index := make(map[promotionKey]int, len(events))
	out := make([]CampaignEvent, 0, len(events))
	for _, e := range events {
		k := promotionKey{listing: e.Listing.ID, regular: e.RegularPrice, promo: e.PromoPrice}
		if i, seen := index[k]; seen {
			if e.ObservedAt.After(out[i].ObservedAt) {
				out[i] = e
			}
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}

// SortCampaignEvents trie par remise décroissante, puis par date décroissante
func SortCampaignEvents(events []CampaignEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].DiscountPercent != events[j].DiscountPercent {
			return events[i].DiscountPercent > events[j].DiscountPercent
		}
		return events[i].ObservedAt.After(events[j].ObservedAt)
	})
}

// CampaignStats agrégats des événements détectés
type CampaignStats struct {
	TotalEvents         int                  `json:"total_events"`
	ByTier              map[CampaignTier]int `json:"by_tier"`
	ByConfidence        map[Confidence]int   `json:"by_confidence"`
	ByPlatform          map[string]int       `json:"by_platform"`
	MaxDiscountPercent  float64              `json:"max_discount_percent"`
	MeanDiscountPercent float64              `json:"mean_discount_percent"`
}

// ComputeCampaignStats agrège les événements; tous les paliers et niveaux sont présents (0 si absents)
func ComputeCampaignStats(events []CampaignEvent) CampaignStats {
	stats := CampaignStats{
		TotalEvents:  len(events),
		ByTier:       make(map[CampaignTier]int, len(CampaignTiers)),
		ByConfidence: make(map[Confidence]int, len(Confidences)),
		ByPlatform:   make(map[string]int),
	}
	for _, t := range CampaignTiers {
		stats.ByTier[t] = 0
	}
	for _, c := range Confidences {
		stats.ByConfidence[c] = 0
	}

	var sum float64
	for _, e := range events {
		stats.ByTier[e.Tier]++
		stats.ByConfidence[e.Confidence]++
		stats.ByPlatform[e.Listing.PlatformOrUnknown()]++
		sum += e.DiscountPercent
		if e.DiscountPercent > stats.MaxDiscountPercent {
			stats.MaxDiscountPercent = e.DiscountPercent
		}
	}
	stats.MeanDiscountPercent = shareddomain.Round2(shareddomain.SafeMean(sum, len(events)))
	return stats
}

// CampaignReport événements et agrégats d'un produit final
type CampaignReport struct {
	Params CampaignParams  `json:"-"`
	Events []CampaignEvent `json:"events"`
	Stats  CampaignStats   `json:"stats"`
}

// NewCampaignReport dédoublonne et trie les événements, puis calcule les agrégats
func NewCampaignReport(params CampaignParams, events []CampaignEvent) *CampaignReport {
	events = LatestPerPromotion(events)
	SortCampaignEvents(events)
	return &CampaignReport{
		Params: params,
		Events: events,
		Stats:  ComputeCampaignStats(events),
	}
}
