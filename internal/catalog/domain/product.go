package domain

import (
	"errors"
	"strings"
	"time"

	"pricetrack/internal/shared/domain"
)

// FinalProductID représente l'identifiant unique d'un produit final
type FinalProductID int64

// FinalProduct représente un produit canonique géré par l'équipe catalogue
type FinalProduct struct {
	id            FinalProductID
	name          string
	brand         string
	categoryID    *CategoryID
	tagIDs        []TagID
	normalPrice   domain.Price
	campaignPrice domain.Price
	externalID    string
	createdAt     time.Time
}

// NewFinalProduct crée une nouvelle instance de FinalProduct avec validation
func NewFinalProduct(
	id FinalProductID,
	name string,
	brand string,
	categoryID *CategoryID,
	tagIDs []TagID,
	normalPrice domain.Price,
	campaignPrice domain.Price,
	externalID string,
	createdAt time.Time,
) (*FinalProduct, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("final product name cannot be empty")
	}

	return &FinalProduct{
		id:            id,
		name:          name,
		brand:         brand,
		categoryID:    categoryID,
		tagIDs:        append([]TagID{}, tagIDs...),
		normalPrice:   normalPrice,
		campaignPrice: campaignPrice,
		externalID:    externalID,
		createdAt:     createdAt,
	}, nil
}

// ID retourne l'identifiant du produit
func (p *FinalProduct) ID() FinalProductID { return p.id }

// Name retourne le nom du produit
func (p *FinalProduct) Name() string { return p.name }

// Brand retourne la marque
func (p *FinalProduct) Brand() string { return p.brand }

// CategoryID retourne la catégorie éventuelle
func (p *FinalProduct) CategoryID() (CategoryID, bool) {
	if p.categoryID == nil {
		return 0, false
	}
	return *p.categoryID, true
}

// TagIDs retourne les étiquettes du produit
func (p *FinalProduct) TagIDs() []TagID {
	return append([]TagID{}, p.tagIDs...)
}

// NormalPrice retourne le prix normal
func (p *FinalProduct) NormalPrice() domain.Price { return p.normalPrice }

// CampaignPrice retourne le prix de campagne
func (p *FinalProduct) CampaignPrice() domain.Price { return p.campaignPrice }

// ExternalID retourne l'identifiant dans le système de commerce externe ("" si non synchronisé)
func (p *FinalProduct) ExternalID() string { return p.externalID }

// CreatedAt retourne la date de création
func (p *FinalProduct) CreatedAt() time.Time { return p.createdAt }

// HasTag vérifie si le produit porte une étiquette
func (p *FinalProduct) HasTag(tagID TagID) bool {
	for _, id := range p.tagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// IsExternallyManaged vérifie si le produit est synchronisé vers le commerce externe
// Un tel produit ne peut pas être supprimé
func (p *FinalProduct) IsExternallyManaged() bool {
	return strings.TrimSpace(p.externalID) != ""
}
