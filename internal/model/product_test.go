package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "category %s should be valid", c)
	}
	assert.False(t, Category("Laptops").Valid())
	assert.False(t, Category("").Valid())
}

func TestProduct_Workflow(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		expected PurchaseWorkflow
	}{
		{
			name:     "No flags resolves to direct",
			product:  Product{},
			expected: WorkflowDirect,
		},
		{
			name:     "Quote required",
			product:  Product{IsQuoteRequired: true},
			expected: WorkflowQuote,
		},
		{
			name:     "Model selection",
			product:  Product{IsModelRequired: true},
			expected: WorkflowModelSelect,
		},
		{
			name:     "Universal model",
			product:  Product{IsUniversalModel: true},
			expected: WorkflowUniversalModel,
		},
		{
			name:     "Contact only",
			product:  Product{IsContactOnly: true},
			expected: WorkflowContactOnly,
		},
		{
			name:     "Contact only wins over every other flag",
			product:  Product{IsContactOnly: true, IsQuoteRequired: true, IsModelRequired: true, IsUniversalModel: true},
			expected: WorkflowContactOnly,
		},
		{
			name:     "Universal model wins over model selection",
			product:  Product{IsUniversalModel: true, IsModelRequired: true},
			expected: WorkflowUniversalModel,
		},
		{
			name:     "Model selection wins over quote",
			product:  Product{IsModelRequired: true, IsQuoteRequired: true},
			expected: WorkflowModelSelect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.product.Workflow())
		})
	}
}

func TestProduct_Purchasable(t *testing.T) {
	assert.True(t, (&Product{}).Purchasable())
	assert.False(t, (&Product{IsHidden: true}).Purchasable())
	assert.False(t, (&Product{IsSoldOut: true}).Purchasable())
	assert.False(t, (&Product{IsHidden: true, IsSoldOut: true}).Purchasable())
}
