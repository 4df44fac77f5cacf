package models

import "strconv"

// CartSlots is the number of product slots every cart carries.
const CartSlots = 300

// Cart maps a product slot in [0, CartSlots) to the quantity held.
type Cart map[int]int

// NewCart returns a cart with every slot present and zeroed.
func NewCart() Cart {
	c := make(Cart, CartSlots)
	for i := 0; i < CartSlots; i++ {
		c[i] = 0
	}
	return c
}

// ValidSlot reports whether slot addresses a cart entry.
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < CartSlots
}

// CartFromStrings converts a document-store cart (string keys) into a Cart.
// Keys that are not in range are dropped; missing slots read as zero.
func CartFromStrings(m map[string]int) Cart {
	c := NewCart()
	for k, v := range m {
		slot, err := strconv.Atoi(k)
		if err != nil || !ValidSlot(slot) {
			continue
		}
		c[slot] = v
	}
	return c
}

// Strings converts the cart to the string-keyed form stored in documents.
func (c Cart) Strings() map[string]int {
	m := make(map[string]int, len(c))
	for slot, n := range c {
		m[strconv.Itoa(slot)] = n
	}
	return m
}

// CartItemRequest is the JSON body for POST /addtocart and /removefromcart.
type CartItemRequest struct {
	ItemID *int `json:"itemId" validate:"required,min=0,max=299"`
}
