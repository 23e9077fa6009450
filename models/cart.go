package models

import "fmt"

// CartData maps a food item's hex id to a strictly positive quantity. An
// entry whose quantity would reach zero is removed, never stored as zero.
type CartData map[string]int

// NewCartData returns an empty cart.
func NewCartData() CartData {
	return CartData{}
}

// Validate checks the positive-quantity invariant.
func (c CartData) Validate() error {
	for id, qty := range c {
		if qty <= 0 {
			return fmt.Errorf("%w: quantity %d for item %s", ErrInvalidArgument, qty, id)
		}
	}
	return nil
}

// Add increments the quantity for foodID by one, creating the entry at 1.
func (c CartData) Add(foodID string) {
	c[foodID]++
}

// Remove decrements the quantity for foodID by one, deleting the entry when
// it reaches zero. Removing an absent entry is an error and leaves the cart
// unchanged.
func (c CartData) Remove(foodID string) error {
	qty, ok := c[foodID]
	if !ok {
		return fmt.Errorf("%w: item %s not in cart", ErrNotFound, foodID)
	}
	if qty <= 1 {
		delete(c, foodID)
		return nil
	}
	c[foodID] = qty - 1
	return nil
}

// Quantity returns the quantity for foodID, zero if absent.
func (c CartData) Quantity(foodID string) int {
	return c[foodID]
}

// Clone returns an independent copy of the cart.
func (c CartData) Clone() CartData {
	out := make(CartData, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}
