package summary

import (
	"testing"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdviceInput_RankingAndShares(t *testing.T) {
	s := Summarize([]domain.Transaction{
		tx("2024-01-03", "-50.00", domain.Food),
		tx("2024-01-15", "-20.50", domain.Food),
		tx("2024-01-20", "-30.00", domain.Transport),
		tx("2024-02-02", "10.00", domain.Food),
		tx("2024-02-10", "-15.25", domain.Transport),
	})

	in := NewAdviceInput(s)

	require.Len(t, in.Ranked, 2)
	assert.Equal(t, domain.Food, in.Ranked[0].Category)
	assert.Equal(t, domain.Transport, in.Ranked[1].Category)
	assertDecimal(t, "105.75", in.AbsoluteTotal)
	assert.Equal(t, "57.2", in.ShareString(domain.Food))
	assert.Equal(t, "42.8", in.ShareString(domain.Transport))
	assert.Equal(t, "0.0", in.ShareString(domain.Rent))
}

func TestNewAdviceInput_TiesFollowEnumerationOrder(t *testing.T) {
	s := domain.SpendingSummary{
		CategoryTotals: map[domain.Category]decimal.Decimal{
			domain.Other:     decimal.NewFromInt(10),
			domain.Shopping:  decimal.NewFromInt(10),
			domain.Rent:      decimal.NewFromInt(10),
			domain.Transport: decimal.NewFromInt(25),
		},
		TotalSpending: decimal.NewFromInt(-55),
	}

	in := NewAdviceInput(s)

	var order []domain.Category
	for _, ct := range in.Ranked {
		order = append(order, ct.Category)
	}
	assert.Equal(t, []domain.Category{domain.Transport, domain.Rent, domain.Shopping, domain.Other}, order)
}

func TestNewAdviceInput_ZeroTotal(t *testing.T) {
	s := Summarize([]domain.Transaction{
		tx("2024-01-01", "-100", domain.Shopping),
		tx("2024-01-02", "100", domain.Other),
	})

	in := NewAdviceInput(s)

	assert.True(t, in.AbsoluteTotal.IsZero())
	for _, ct := range in.Ranked {
		assert.True(t, in.Share(ct.Category).IsZero())
	}
}

func TestNewAdviceInput_Empty(t *testing.T) {
	in := NewAdviceInput(Summarize(nil))

	assert.Empty(t, in.Ranked)
	_, ok := in.Top(0)
	assert.False(t, ok)
}

func TestAdviceInput_Top(t *testing.T) {
	in := NewAdviceInput(Summarize([]domain.Transaction{
		tx("2024-01-01", "-5", domain.Food),
		tx("2024-01-02", "-7", domain.Rent),
	}))

	first, ok := in.Top(0)
	require.True(t, ok)
	assert.Equal(t, domain.Rent, first.Category)

	second, ok := in.Top(1)
	require.True(t, ok)
	assert.Equal(t, domain.Food, second.Category)

	_, ok = in.Top(2)
	assert.False(t, ok)
}
