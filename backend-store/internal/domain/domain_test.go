package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrder_ComputeTotals(t *testing.T) {
	o := &Order{
		ShippingCost:   dec("4.99"),
		DiscountAmount: dec("2.00"),
		Items: []*OrderItem{
			NewOrderItem(1, 2, dec("10.25")),
			NewOrderItem(2, 1, dec("3.33")),
		},
	}

	o.ComputeTotals(dec("0.20"))

	assert.True(t, dec("23.83").Equal(o.Subtotal), o.Subtotal.String())
	assert.True(t, dec("4.77").Equal(o.Tax), o.Tax.String())
	assert.True(t, dec("31.59").Equal(o.Total), o.Total.String())
}

func TestOrder_ComputeTotals_FloorsAtZero(t *testing.T) {
	o := &Order{
		DiscountAmount: dec("100"),
		Items:          []*OrderItem{NewOrderItem(1, 1, dec("5"))},
	}

	o.ComputeTotals(dec("0.20"))

	assert.True(t, o.Total.IsZero())
	assert.True(t, dec("1").Equal(o.Tax))
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusCreated, OrderStatusPaid, true},
		{OrderStatusCreated, OrderStatusCancelled, true},
		{OrderStatusCreated, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCreated, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusCreated, OrderStatusProcessing, false},
		{OrderStatusProcessing, OrderStatusPaid, false},
		{OrderStatusProcessing, OrderStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus(" shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, st)

	_, err = ParseOrderStatus("LOST")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = ParseOrderStatus("processing")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestProduct_Validate(t *testing.T) {
	p := &Product{Price: dec("9.99"), Condition: ConditionNew, Stock: 0}
	assert.NoError(t, p.Validate())

	p.Price = decimal.Zero
	assert.ErrorIs(t, p.Validate(), ErrInvalidPrice)

	p.Price = dec("1")
	p.Stock = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidStock)
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("")
	require.NoError(t, err)
	assert.Equal(t, ConditionNew, c)

	c, err = ParseCondition("used")
	require.NoError(t, err)
	assert.Equal(t, ConditionUsed, c)

	_, err = ParseCondition("broken")
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3159), MinorUnits(dec("31.59")))
	assert.Equal(t, int64(1000), MinorUnits(dec("10")))
	assert.Equal(t, int64(1), MinorUnits(dec("0.005")))
}
