package model

import "time"

// Product represents an article in the storefront catalogue.
// Prices are integer currency units (FCFA).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Category    string    `json:"category"`
	Sizes       []string  `json:"sizes"`
	Images      []string  `json:"images"`
	Colors      []string  `json:"colors"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PrimaryImage returns the first image of the product, or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// PageContent represents an editable content block of the storefront
// (home banner, about text, contact details).
type PageContent struct {
	ID        string    `json:"id"`
	Page      string    `json:"page"`
	Section   string    `json:"section"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}
