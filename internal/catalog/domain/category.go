package domain

import (
	"errors"
)

// CategoryID représente l'identifiant unique d'une catégorie
type CategoryID int64

// TagID représente l'identifiant unique d'une étiquette
type TagID int64

// Category représente une catégorie (au plus un parent: deux niveaux)
type Category struct {
	id       CategoryID
	name     string
	parentID *CategoryID
}

// NewCategory crée une nouvelle instance de Category avec validation
func NewCategory(id CategoryID, name string, parentID *CategoryID) (*Category, error) {
	if name == "" {
		return nil, errors.New("category name cannot be empty")
	}
	if parentID != nil && *parentID == id {
		return nil, errors.New("category cannot be its own parent")
	}

	return &Category{
		id:       id,
		name:     name,
		parentID: parentID,
	}, nil
}

// ID retourne l'identifiant
func (c *Category) ID() CategoryID { return c.id }

// Name retourne le nom
func (c *Category) Name() string { return c.name }

// ParentID retourne le parent éventuel
func (c *Category) ParentID() (CategoryID, bool) {
	if c.parentID == nil {
		return 0, false
	}
	return *c.parentID, true
}

// Tag représente une étiquette de classification
type Tag struct {
	ID   TagID  `json:"id"`
	Name string `json:"name"`
}
