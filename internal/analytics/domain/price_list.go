package domain

import (
	"sort"
	"time"
)

// ListingPriceHistory historique complet d'une annonce avec son moment le plus bas
type ListingPriceHistory struct {
	Listing      ListingRef         `json:"listing"`
	Observations []PriceObservation `json:"observations"`
	Lowest       *LowestMoment      `json:"lowest_moment"`
}

// LowestPriceEntry annonce associée avec sa dernière observation
type LowestPriceEntry struct {
	Listing        ListingRef        `json:"listing"`
	Latest         *PriceObservation `json:"latest_observation"`
	EffectivePrice float64           `json:"effective_price"`
}

// NewLowestPriceEntry construit l'entrée; sans observation le prix effectif est 0
func NewLowestPriceEntry(listing ListingRef, latest *PriceObservation) LowestPriceEntry {
	e := LowestPriceEntry{Listing: listing, Latest: latest}
	if latest != nil {
		e.EffectivePrice = latest.EffectivePrice().Amount()
	}
	return e
}

// SortByEffectivePrice trie par prix effectif croissant; les annonces sans prix viennent en dernier
func SortByEffectivePrice(entries []LowestPriceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].EffectivePrice, entries[j].EffectivePrice
		switch {
		case pi > 0 && pj <= 0:
			return true
		case pi <= 0 && pj > 0:
			return false
		case pi != pj:
			return pi < pj
		default:
			return entries[i].Listing.ID < entries[j].Listing.ID
		}
	})
}

// StockStatus dernier état de stock relevé pour une annonce
type StockStatus struct {
	Listing    ListingRef `json:"listing"`
	Status     string     `json:"stock_status"`
	ObservedAt *time.Time `json:"observed_at"`
}

// ProductHeader en-tête d'un produit final dans un rapport
type ProductHeader struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category,omitempty"`
	NormalPrice   *float64 `json:"normal_price"`
	CampaignPrice *float64 `json:"campaign_price"`
}

// Overview ensemble des rapports d'un produit final, calculés en parallèle
type Overview struct {
	Product          ProductHeader     `json:"product"`
	LowestMoments    []LowestMoment    `json:"lowest_moments"`
	Campaigns        *CampaignReport   `json:"campaigns"`
	PlatformAverages []PlatformAverage `json:"platform_averages"`
	TagAverages      []TagAverage      `json:"tag_averages"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
