package model

import "time"

// CartLine is one entry in a cart: a product snapshot plus quantity and the
// optional per-customer qualifiers. UnitPrice and QuotedPrice are whole
// rupees; QuotedPrice overrides UnitPrice when a custom quote was negotiated.
type CartLine struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	UnitPrice    *int64 `json:"unitPrice,omitempty"`
	Quantity     int    `json:"quantity"`
	PhoneDetails string `json:"phoneDetails,omitempty"`
	QuotedPrice  *int64 `json:"quotedPrice,omitempty"`
}

// Key returns the identity of the line. Two adds with the same product and
// phone details merge into one line instead of duplicating it.
func (l *CartLine) Key() string {
	return l.ProductID + l.PhoneDetails
}

// Cart is the mutable selection owned by one shopper session. Every mutation
// is persisted in full so the cart survives across visits.
type Cart struct {
	SessionID string     `json:"sessionId" db:"session_id"`
	Lines     []CartLine `json:"lines" db:"lines"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Line bounds enforced by quantity updates.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

// TotalItemCount sums quantities across all lines.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// FindLine returns the line with the given identity key, or nil.
func (c *Cart) FindLine(key string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return &c.Lines[i]
		}
	}
	return nil
}
