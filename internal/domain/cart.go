package domain

import "time"

// Cart is the visitor's pre-checkout selection, insertion order preserved.
// It persists as a bare sequence of lines under the cart storage key.
type Cart struct {
	Items []CartLine `json:"items"`
}

// CartLine snapshots name and unit price at add-time. An order must reflect
// the price at time of purchase even if the catalog changes afterwards.
type CartLine struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

func (l CartLine) Subtotal() float64 {
	return Round2(l.UnitPrice * float64(l.Quantity))
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the line for productID, or nil. At most one line exists per
// product.
func (c *Cart) Find(productID int64) *CartLine {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Total sums the per-line subtotals, rounded again at the grand-total level.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Items {
		total += l.Subtotal()
	}
	return Round2(total)
}

// CopyItems returns a deep copy of the lines, so a stored order can never be
// altered by later cart mutations.
func (c *Cart) CopyItems() []CartLine {
	items := make([]CartLine, len(c.Items))
	copy(items, c.Items)
	return items
}
