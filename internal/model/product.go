package model

import "time"

// Category is the fixed set of product categories carried by the store.
type Category string

const (
	CategoryAirPods      Category = "AirPods"
	CategoryChargers     Category = "Chargers"
	CategoryCables       Category = "Cables"
	CategorySkins        Category = "Skins"
	CategoryScreenGuards Category = "ScreenGuards"
	CategorySpeakers     Category = "Speakers"
	CategoryWiredAudio   Category = "WiredAudio"
	CategoryNeckbands    Category = "Neckbands"
	CategoryAccessory    Category = "Accessory"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryAirPods,
	CategoryChargers,
	CategoryCables,
	CategorySkins,
	CategoryScreenGuards,
	CategorySpeakers,
	CategoryWiredAudio,
	CategoryNeckbands,
	CategoryAccessory,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PurchaseWorkflow is the closed variant resolved from a product's workflow
// flags. Exactly one applies to any given product.
type PurchaseWorkflow string

const (
	// WorkflowDirect adds straight to the cart at the listed price.
	WorkflowDirect PurchaseWorkflow = "direct"
	// WorkflowQuote requires a negotiated price before the item enters the cart.
	WorkflowQuote PurchaseWorkflow = "quote"
	// WorkflowContactOnly is never carted; the shop is contacted directly.
	WorkflowContactOnly PurchaseWorkflow = "contact"
	// WorkflowModelSelect requires a device model picked from the supported list.
	WorkflowModelSelect PurchaseWorkflow = "model"
	// WorkflowUniversalModel requires a free-text device model (any phone).
	WorkflowUniversalModel PurchaseWorkflow = "universal_model"
)

// Product represents an item in the catalogue. Price is in whole rupees and
// is nil for quote-required services, whose price is negotiated per customer.
type Product struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Category         Category  `json:"category" db:"category"`
	Price            *int64    `json:"price,omitempty" db:"price"`
	Description      string    `json:"description" db:"description"`
	Image            string    `json:"image" db:"image"`
	Size             string    `json:"size" db:"size"`
	IsPopular        bool      `json:"isPopular" db:"is_popular"`
	IsQuoteRequired  bool      `json:"isQuoteRequired" db:"is_quote_required"`
	IsContactOnly    bool      `json:"isContactOnly" db:"is_contact_only"`
	IsModelRequired  bool      `json:"isModelRequired" db:"is_model_required"`
	IsUniversalModel bool      `json:"isUniversalModel" db:"is_universal_model"`
	IsHidden         bool      `json:"isHidden" db:"is_hidden"`
	IsSoldOut        bool      `json:"isSoldOut" db:"is_sold_out"`
	Rating           float64   `json:"rating,omitempty" db:"rating"`
	Reviews          int       `json:"reviews,omitempty" db:"reviews"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// Workflow resolves the boolean workflow flags into a single closed variant.
// Contact-only wins over model selection, which wins over quote-required.
func (p *Product) Workflow() PurchaseWorkflow {
	switch {
	case p.IsContactOnly:
		return WorkflowContactOnly
	case p.IsUniversalModel:
		return WorkflowUniversalModel
	case p.IsModelRequired:
		return WorkflowModelSelect
	case p.IsQuoteRequired:
		return WorkflowQuote
	default:
		return WorkflowDirect
	}
}

// Purchasable reports whether the product can currently be bought.
// Hidden and sold-out products stay in the catalogue but are not buyable.
func (p *Product) Purchasable() bool {
	return !p.IsHidden && !p.IsSoldOut
}
