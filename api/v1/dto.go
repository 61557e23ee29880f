package v1

import (
	"time"

	catalogdomain "pricetrack/internal/catalog/domain"
	matchingdomain "pricetrack/internal/matching/domain"
)

// FinalProductDTO représentation JSON d'un produit final dans la liste
type FinalProductDTO struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Brand         string                `json:"brand"`
	CategoryID    *int64                `json:"category_id"`
	TagIDs        []catalogdomain.TagID `json:"tag_ids"`
	NormalPrice   *float64              `json:"normal_price"`
	CampaignPrice *float64              `json:"campaign_price"`
	ExternalID    string                `json:"external_id,omitempty"`
	MatchedCount  int                   `json:"matched_count"`
	CreatedAt     time.Time             `json:"created_at"`
}

func toFinalProductDTO(s catalogdomain.FinalProductSummary) FinalProductDTO {
	p := s.Product
	dto := FinalProductDTO{
		ID:            int64(p.ID()),
		Name:          p.Name(),
		Brand:         p.Brand(),
		TagIDs:        p.TagIDs(),
		NormalPrice:   p.NormalPrice().Ptr(),
		CampaignPrice: p.CampaignPrice().Ptr(),
		ExternalID:    p.ExternalID(),
		MatchedCount:  s.MatchedCount,
		CreatedAt:     p.CreatedAt(),
	}
	if cat, ok := p.CategoryID(); ok {
		v := int64(cat)
		dto.CategoryID = &v
	}
	return dto
}

// CandidateDTO représentation JSON d'une annonce candidate
type CandidateDTO struct {
	ID                 int64     `json:"id"`
	Platform           string    `json:"platform"`
	ExternalID         string    `json:"platform_listing_id"`
	Title              string    `json:"title"`
	Brand              string    `json:"brand"`
	URL                string    `json:"url"`
	ListingType        string    `json:"listing_type"`
	LatestPrice        *float64  `json:"latest_price"`
	IsCurrentlyMatched bool      `json:"is_currently_matched"`
	CreatedAt          time.Time `json:"created_at"`
}

func toCandidateDTO(c matchingdomain.Candidate) CandidateDTO {
	l := c.Listing
	return CandidateDTO{
		ID:                 int64(l.ID()),
		Platform:           string(l.Platform()),
		ExternalID:         l.ExternalID(),
		Title:              l.Title(),
		Brand:              l.Brand(),
		URL:                l.URL(),
		ListingType:        l.ListingType(),
		LatestPrice:        c.LatestPrice.Ptr(),
		IsCurrentlyMatched: c.IsCurrentlyMatched,
		CreatedAt:          l.CreatedAt(),
	}
}

// MatchRequest corps de PUT/POST .../matches
type MatchRequest struct {
	ListingIDs []int64 `json:"listing_ids" binding:"required"`
	ReplaceAll bool    `json:"replace_all"`
}

func (r MatchRequest) listingIDs() []catalogdomain.ListingID {
	ids := make([]catalogdomain.ListingID, len(r.ListingIDs))
	for i, id := range r.ListingIDs {
		ids[i] = catalogdomain.ListingID(id)
	}
	return ids
}
