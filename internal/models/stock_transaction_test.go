package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockTransaction_Apply(t *testing.T) {
	tests := []struct {
		name    string
		typ     TransactionType
		qty     int
		current int
		want    int
		wantErr error
	}{
		{"in adds", TransactionIn, 5, 10, 15, nil},
		{"return adds", TransactionReturn, 2, 0, 2, nil},
		{"out subtracts", TransactionOut, 4, 10, 6, nil},
		{"out to zero", TransactionOut, 10, 10, 0, nil},
		{"out beyond stock", TransactionOut, 11, 10, 10, ErrInsufficientStock},
		{"adjust sets level", TransactionAdjustment, 7, 42, 7, nil},
		{"adjust to zero", TransactionAdjustment, 0, 42, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := StockTransaction{Type: tt.typ, Quantity: tt.qty}
			got, err := tx.Apply(tt.current)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockTransaction_Validate(t *testing.T) {
	assert.NoError(t, (&StockTransaction{Type: TransactionIn, Quantity: 1}).Validate())
	assert.NoError(t, (&StockTransaction{Type: TransactionAdjustment, Quantity: 0}).Validate())
	assert.Error(t, (&StockTransaction{Type: TransactionOut, Quantity: 0}).Validate())
	assert.Error(t, (&StockTransaction{Type: TransactionAdjustment, Quantity: -1}).Validate())
	assert.Error(t, (&StockTransaction{Type: "XFER", Quantity: 1}).Validate())
}

func TestStockParity_Resolve(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	uid := uint(7)
	p := StockParity{ExpectedQuantity: 10, ActualQuantity: 8}

	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, -2, p.Discrepancy)

	assert.True(t, p.Resolve(&uid, now))
	assert.True(t, p.Resolved)
	assert.Equal(t, now, *p.ResolvedAt)

	assert.False(t, p.Resolve(nil, now.Add(time.Hour)))
	assert.Equal(t, now, *p.ResolvedAt)
	assert.Equal(t, uid, *p.ResolvedByID)
}
