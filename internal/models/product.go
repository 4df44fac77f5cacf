package models

import "time"

// Product is a catalog entry. ID is the public integer id, assigned by the store.
type Product struct {
	ID        int       `json:"id"        bson:"id"`
	Name      string    `json:"name"      bson:"name"`
	Image     string    `json:"image"     bson:"image"`
	Category  string    `json:"category"  bson:"category"`
	NewPrice  float64   `json:"new_price" bson:"new_price"`
	OldPrice  float64   `json:"old_price" bson:"old_price"`
	Date      time.Time `json:"date"      bson:"date"`
	Available bool      `json:"available" bson:"available"`
}

// AddProductRequest is the JSON body for POST /addproduct.
type AddProductRequest struct {
	Name     string   `json:"name"      validate:"required"`
	Image    string   `json:"image"     validate:"required"`
	Category string   `json:"category"  validate:"required"`
	NewPrice *float64 `json:"new_price" validate:"required"`
	OldPrice *float64 `json:"old_price" validate:"required"`
}

// Product builds a new, available product from the request. ID and Date are left to the store.
func (r AddProductRequest) Product() *Product {
	p := &Product{
		Name:      r.Name,
		Image:     r.Image,
		Category:  r.Category,
		Available: true,
	}
	if r.NewPrice != nil {
		p.NewPrice = *r.NewPrice
	}
	if r.OldPrice != nil {
		p.OldPrice = *r.OldPrice
	}
	return p
}

// RemoveProductRequest is the JSON body for POST /removeproduct.
type RemoveProductRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
