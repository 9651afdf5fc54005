// Package quote implements the arithmetic behind quote building: line items,
// margins, tax, totals and margin guardrails.
package quote

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrItemNotFound   = errors.New("line item not found")
)

// LineItem is one priced row of a quote. LineTotal and Margin are derived and
// kept in sync by every constructor and With* helper.
type LineItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
	Margin      float64 `json:"margin"`
}

// NewLineItem builds a line item. Quantity is clamped to at least 1.
func NewLineItem(id, name string, qty int, unitCost, unitPrice float64) (LineItem, error) {
	if unitCost < 0 || unitPrice < 0 {
		return LineItem{}, ErrNegativeAmount
	}
	li := LineItem{
		ID:        id,
		Name:      name,
		Quantity:  ClampQuantity(qty),
		UnitCost:  unitCost,
		UnitPrice: unitPrice,
	}
	return li.recalc(), nil
}

// ClampQuantity enforces the minimum quantity of 1.
func ClampQuantity(qty int) int {
	return max(qty, 1)
}

func (li LineItem) recalc() LineItem {
	li.LineTotal = float64(li.Quantity) * li.UnitPrice
	li.Margin = LineMargin(li.UnitCost, li.UnitPrice)
	return li
}

// Cost is the extended cost of the line.
func (li LineItem) Cost() float64 {
	return float64(li.Quantity) * li.UnitCost
}

// WithQuantity returns a copy with quantity set, clamped to at least 1.
func (li LineItem) WithQuantity(qty int) LineItem {
	li.Quantity = ClampQuantity(qty)
	return li.recalc()
}

// WithUnitCost returns a copy with the unit cost set.
func (li LineItem) WithUnitCost(cost float64) (LineItem, error) {
	if cost < 0 {
		return li, ErrNegativeAmount
	}
	li.UnitCost = cost
	return li.recalc(), nil
}

// WithUnitPrice returns a copy with the unit price set.
func (li LineItem) WithUnitPrice(price float64) (LineItem, error) {
	if price < 0 {
		return li, ErrNegativeAmount
	}
	li.UnitPrice = price
	return li.recalc(), nil
}

// WithName returns a copy with the name set.
func (li LineItem) WithName(name string) LineItem {
	li.Name = name
	return li
}

// WithDescription returns a copy with the description set.
func (li LineItem) WithDescription(desc string) LineItem {
	li.Description = desc
	return li
}

// Items is an ordered list of line items. Methods return new slices.
type Items []LineItem

// Add appends an item.
func (items Items) Add(li LineItem) Items {
	return append(slices.Clone(items), li.recalc())
}

// Index returns the position of id, or -1.
func (items Items) Index(id string) int {
	return slices.IndexFunc(items, func(li LineItem) bool { return li.ID == id })
}

// Update applies fn to the item with the given id.
func (items Items) Update(id string, fn func(LineItem) (LineItem, error)) (Items, error) {
	i := items.Index(id)
	if i < 0 {
		return items, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	updated, err := fn(items[i])
	if err != nil {
		return items, err
	}
	out := slices.Clone(items)
	out[i] = updated.recalc()
	return out, nil
}

// Remove drops the item with the given id.
func (items Items) Remove(id string) (Items, error) {
	i := items.Index(id)
	if i < 0 {
		return items, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return slices.Delete(slices.Clone(items), i, i+1), nil
}

// At returns the item at a 1-based position, as shown to users.
func (items Items) At(pos int) (LineItem, error) {
	if pos < 1 || pos > len(items) {
		return LineItem{}, fmt.Errorf("%w: position %d", ErrItemNotFound, pos)
	}
	return items[pos-1], nil
}
