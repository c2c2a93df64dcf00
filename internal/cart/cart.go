// Package cart holds the per-session shopping cart of the public catalog.
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the snapshot of a catalog product taken when it enters the cart.
type Product struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Price            decimal.Decimal  `json:"price"`
	PromotionalPrice *decimal.Decimal `json:"promotional_price,omitempty"`
}

// UnitPrice is the promotional price when one is set and non-zero, else the
// regular price.
func (p Product) UnitPrice() decimal.Decimal {
	if p.PromotionalPrice != nil && !p.PromotionalPrice.IsZero() {
		return *p.PromotionalPrice
	}
	return p.Price
}

type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Lines      []Line    `json:"lines"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func New(businessID uuid.UUID) *Cart {
	return &Cart{
		ID:         uuid.New(),
		BusinessID: businessID,
		Lines:      []Line{},
		UpdatedAt:  time.Now(),
	}
}

// Add increments the line for p, or appends a new line with quantity 1.
func (c *Cart) Add(p Product) {
	c.UpdatedAt = time.Now()
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: 1})
}

// Remove decrements the line for productID and drops it once the quantity
// reaches zero. Unknown products are ignored.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID != productID {
			continue
		}
		c.UpdatedAt = time.Now()
		if c.Lines[i].Quantity <= 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
		c.Lines[i].Quantity--
		return
	}
}

// Subtract removes the quantities in lines, leaving anything added since
// those lines were read.
func (c *Cart) Subtract(lines []Line) {
	for _, taken := range lines {
		for i := range c.Lines {
			if c.Lines[i].Product.ID != taken.Product.ID {
				continue
			}
			c.Lines[i].Quantity -= taken.Quantity
			if c.Lines[i].Quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			}
			break
		}
	}
	c.UpdatedAt = time.Now()
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.UpdatedAt = time.Now()
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, l := range c.Lines {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
