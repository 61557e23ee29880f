package domain

import (
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// ListingRef description minimale d'une annonce dans un rapport
type ListingRef struct {
	ID       catalogdomain.ListingID `json:"listing_id"`
	Platform string                  `json:"platform"`
	Title    string                  `json:"title"`
	URL      string                  `json:"url"`
}

// PlatformOrUnknown retourne la plateforme, "unknown" si elle est vide
func (l ListingRef) PlatformOrUnknown() string {
	if l.Platform == "" {
		return "unknown"
	}
	return l.Platform
}

// PriceObservation échantillon de prix horodaté d'une annonce (immuable)
type PriceObservation struct {
	ListingID   catalogdomain.ListingID `json:"listing_id"`
	Price       shareddomain.Price      `json:"price"`
	PromoPrice  shareddomain.Price      `json:"promo_price"`
	StockStatus string                  `json:"stock_status,omitempty"`
	ObservedAt  time.Time               `json:"observed_at"`
}

// HasActivePromotion vérifie si l'observation porte une promotion distincte du prix normal
func (o PriceObservation) HasActivePromotion() bool {
	return o.Price.IsPositive() && o.PromoPrice.IsPositive() && o.PromoPrice.LessThan(o.Price)
}

// EffectivePrice retourne le prix promotionnel s'il est actif, sinon le prix normal
func (o PriceObservation) EffectivePrice() shareddomain.Price {
	if o.HasActivePromotion() {
		return o.PromoPrice
	}
	return o.Price
}
