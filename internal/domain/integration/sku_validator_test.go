package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateStockCandidates(t *testing.T) {
	t.Run("partitions valid and invalid candidates", func(t *testing.T) {
		candidates := []StockCandidate{
			{InternalSku: "A", ExternalSku: strPtr("100"), Stock: intPtr(5)},
			{InternalSku: "B", ExternalSku: nil, Stock: intPtr(3)},
			{InternalSku: "C", ExternalSku: strPtr("   "), Stock: intPtr(1)},
			{InternalSku: "D", ExternalSku: strPtr(" 200 "), Stock: nil},
			{InternalSku: "E", ExternalSku: strPtr("300"), Stock: intPtr(-4)},
		}

		result := ValidateStockCandidates(candidates)

		assert.Equal(t, 3, result.ValidCount())
		assert.Equal(t, 2, result.InvalidCount)
		assert.Equal(t, []StockItem{
			{InternalSku: "A", ExternalSku: "100", Quantity: 5},
			{InternalSku: "D", ExternalSku: "200", Quantity: 0},
			{InternalSku: "E", ExternalSku: "300", Quantity: 0},
		}, result.ValidProducts)
	})

	t.Run("counts always add up", func(t *testing.T) {
		cases := [][]StockCandidate{
			nil,
			{},
			{{}},
			{{ExternalSku: strPtr("x")}, {}, {ExternalSku: strPtr("")}},
			{{ExternalSku: strPtr("1")}, {ExternalSku: strPtr("2")}},
		}
		for _, candidates := range cases {
			result := ValidateStockCandidates(candidates)
			assert.Equal(t, len(candidates), result.ValidCount()+result.InvalidCount)
		}
	})

	t.Run("all candidates without external SKU", func(t *testing.T) {
		candidates := []StockCandidate{
			{InternalSku: "A", Stock: intPtr(1)},
			{InternalSku: "B"},
			{InternalSku: "C", ExternalSku: strPtr("")},
		}

		result := ValidateStockCandidates(candidates)

		require.NotNil(t, result.ValidProducts)
		assert.Empty(t, result.ValidProducts)
		assert.Equal(t, 3, result.InvalidCount)
	})
}
