package shop

import "storefront/internal/domain"

// View models carry the raw 2-decimal values plus display-formatted strings.
// The core returns plain values only; markup stays in the presentation layer.

type ProductView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	ImageURL       string  `json:"image_url,omitempty"`
	Category       string  `json:"category,omitempty"`
}

type LineView struct {
	ProductID         int64   `json:"product_id"`
	Name              string  `json:"name"`
	UnitPrice         float64 `json:"unit_price"`
	Quantity          int     `json:"quantity"`
	Subtotal          float64 `json:"subtotal"`
	FormattedSubtotal string  `json:"formatted_subtotal"`
}

type CartView struct {
	Lines          []LineView `json:"lines"`
	GrandTotal     float64    `json:"grand_total"`
	FormattedTotal string     `json:"formatted_total"`
}

func newProductViews(products []domain.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{
			ID:             p.ID,
			Name:           p.Name,
			Price:          domain.Round2(p.Price),
			FormattedPrice: domain.FormatTND(p.Price),
			ImageURL:       p.ImageURL,
			Category:       p.Category,
		}
	}
	return views
}

func newCartView(c domain.Cart) CartView {
	lines := make([]LineView, len(c.Items))
	for i, l := range c.Items {
		subtotal := l.Subtotal()
		lines[i] = LineView{
			ProductID:         l.ProductID,
			Name:              l.Name,
			UnitPrice:         l.UnitPrice,
			Quantity:          l.Quantity,
			Subtotal:          subtotal,
			FormattedSubtotal: domain.FormatTND(subtotal),
		}
	}
	total := c.Total()
	return CartView{
		Lines:          lines,
		GrandTotal:     total,
		FormattedTotal: domain.FormatTND(total),
	}
}
