package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	Pattern         string          `json:"pattern,omitempty"`
	CustomText      string          `json:"custom_text,omitempty"`
	Design          string          `json:"design,omitempty"`    // URL desain yang diupload
	DesignID        string          `json:"design_id,omitempty"` // ID object storage
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

// SameConfiguration menentukan apakah dua item boleh digabung (quantity dijumlah).
// Kuncinya: produk, ukuran, warna, pattern, teks custom dan desain.
func (i CartItem) SameConfiguration(o CartItem) bool {
	return i.ProductID == o.ProductID &&
		i.Size == o.Size &&
		i.Color == o.Color &&
		i.Pattern == o.Pattern &&
		i.CustomText == o.CustomText &&
		i.Design == o.Design
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.PriceAtAddition.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	UserID    string          `json:"user_id"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Version   int64           `json:"-"` // optimistic lock; 0 = belum tersimpan
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}, Total: decimal.Zero}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// ComputeTotal menjumlah price_at_addition x quantity semua item.
func (c *Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Recalculate memperbarui running total. Harus dipanggil setiap kali items berubah.
func (c *Cart) Recalculate() {
	c.Total = c.ComputeTotal()
}

// AddOrMerge menambah item atau menggabungkannya ke item dengan konfigurasi sama.
// Mengembalikan ID item yang berubah.
func (c *Cart) AddOrMerge(item CartItem) string {
	for idx := range c.Items {
		if c.Items[idx].SameConfiguration(item) {
			c.Items[idx].Quantity += item.Quantity
			c.Recalculate()
			return c.Items[idx].ID
		}
	}
	c.Items = append(c.Items, item)
	c.Recalculate()
	return item.ID
}

func (c *Cart) FindItem(itemID string) int {
	for idx, it := range c.Items {
		if it.ID == itemID {
			return idx
		}
	}
	return -1
}

func (c *Cart) RemoveItem(itemID string) bool {
	idx := c.FindItem(itemID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recalculate()
	return true
}

type AddItemRequest struct {
	ProductID  string `json:"product_id" form:"product_id" binding:"required"`
	Size       string `json:"size" form:"size" binding:"required"`
	Color      string `json:"color" form:"color" binding:"required"`
	Pattern    string `json:"pattern" form:"pattern"`
	CustomText string `json:"custom_text" form:"custom_text"`
	Quantity   int    `json:"quantity" form:"quantity" binding:"required"`
}

// UpdateItemRequest: field kosong berarti tidak diubah.
type UpdateItemRequest struct {
	Quantity   *int    `json:"quantity" form:"quantity"`
	Size       *string `json:"size" form:"size"`
	Color      *string `json:"color" form:"color"`
	Pattern    *string `json:"pattern" form:"pattern"`
	CustomText *string `json:"custom_text" form:"custom_text"`
}
