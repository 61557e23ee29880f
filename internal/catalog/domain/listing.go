package domain

import (
	"errors"
	"strings"
	"time"
)

// ListingID représente l'identifiant unique d'une annonce brute
type ListingID int64

// Platform représente la marketplace source d'une annonce
type Platform string

// RawListing représente une annonce collectée sur une marketplace
// Unique par (platform, externalID); créée par l'ingestion externe
type RawListing struct {
	id          ListingID
	platform    Platform
	externalID  string
	title       string
	brand       string
	url         string
	listingType string
	tagIDs      []TagID
	createdAt   time.Time
}

// NewRawListing crée une nouvelle instance de RawListing avec validation
func NewRawListing(
	id ListingID,
	platform Platform,
	externalID string,
	title string,
	brand string,
	url string,
	listingType string,
	createdAt time.Time,
) (*RawListing, error) {
	if strings.TrimSpace(string(platform)) == "" {
		return nil, errors.New("listing platform cannot be empty")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, errors.New("listing external id cannot be empty")
	}

	return &RawListing{
		id:          id,
		platform:    platform,
		externalID:  externalID,
		title:       title,
		brand:       brand,
		url:         url,
		listingType: listingType,
		createdAt:   createdAt,
	}, nil
}

// ID retourne l'identifiant de l'annonce
func (l *RawListing) ID() ListingID { return l.id }

// Platform retourne la marketplace
func (l *RawListing) Platform() Platform { return l.platform }

// ExternalID retourne l'identifiant côté marketplace
func (l *RawListing) ExternalID() string { return l.externalID }

// Title retourne le titre
func (l *RawListing) Title() string { return l.title }

// Brand retourne la marque
func (l *RawListing) Brand() string { return l.brand }

// URL retourne le lien de l'annonce
func (l *RawListing) URL() string { return l.url }

// ListingType retourne le type d'annonce (métadonnée libre)
func (l *RawListing) ListingType() string { return l.listingType }

// CreatedAt retourne la date d'ingestion
func (l *RawListing) CreatedAt() time.Time { return l.createdAt }

// TagIDs retourne les étiquettes portées par l'annonce
func (l *RawListing) TagIDs() []TagID {
	return append([]TagID{}, l.tagIDs...)
}

// SetTagIDs définit les étiquettes portées par l'annonce
func (l *RawListing) SetTagIDs(ids []TagID) {
	l.tagIDs = append([]TagID{}, ids...)
}

// Reingest applique une mise à jour de ré-ingestion (seuls titre et marque changent)
func (l *RawListing) Reingest(title, brand string) {
	l.title = title
	l.brand = brand
}
