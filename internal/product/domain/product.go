package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ukuran yang dikenal toko.
var KnownSizes = []string{"Small", "Medium", "Large", "X-Large"}

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	AvailableSizes  []string        `json:"available_sizes"`
	AvailableColors []string        `json:"available_colors"`
	Style           string          `json:"style"`
	ImageURL        string          `json:"image_url,omitempty"`
	ImageID         string          `json:"image_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SupportsSize: ukuran harus sama persis.
func (p *Product) SupportsSize(size string) bool {
	for _, s := range p.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

// SupportsColor: warna dibandingkan tanpa memperhatikan huruf besar/kecil.
func (p *Product) SupportsColor(color string) bool {
	for _, c := range p.AvailableColors {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

func IsKnownSize(size string) bool {
	for _, s := range KnownSizes {
		if s == size {
			return true
		}
	}
	return false
}

type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	AvailableSizes  []string        `json:"available_sizes" binding:"required,min=1"`
	AvailableColors []string        `json:"available_colors" binding:"required,min=1"`
	Style           string          `json:"style"`
	ImageURL        string          `json:"image_url"`
	ImageID         string          `json:"image_id"`
}

// UpdateProductRequest: field nil berarti tidak diubah.
type UpdateProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	AvailableSizes  []string         `json:"available_sizes"`
	AvailableColors []string         `json:"available_colors"`
	Style           *string          `json:"style"`
	ImageURL        *string          `json:"image_url"`
	ImageID         *string          `json:"image_id"`
}
