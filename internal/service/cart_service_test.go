package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/repository/memory"
	"github.com/habscollection/storefront/internal/service"
)

func setupCartTest() *service.CartService {
	return service.NewCartService(memory.NewCartStore())
}

func addParams(productID, size string, qty int, price float64) service.AddItemParams {
	return service.AddItemParams{
		ProductID: productID,
		Size:      size,
		Quantity:  qty,
		Price:     price,
		Name:      "Classic Black Abaya",
		Image:     "/images/products/classic-black-abaya.jpg",
	}
}

func TestAddItemMergesSameProductAndSize(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 2, 50))
	require.NoError(t, err)
	lines, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "M", lines[0].Size)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddItemDifferentSizesStaySeparate(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)
	lines, err := svc.AddItem(ctx, "guest:1", addParams("p1", "L", 1, 50))
	require.NoError(t, err)

	assert.Len(t, lines, 2)
}

func TestAddItemValidation(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	cases := []struct {
		name   string
		params service.AddItemParams
	}{
		{"missing product id", addParams("", "M", 1, 50)},
		{"missing size", addParams("p1", "", 1, 50)},
		{"zero quantity", addParams("p1", "M", 0, 50)},
		{"negative quantity", addParams("p1", "M", -2, 50)},
		{"zero price", addParams("p1", "M", 1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, "guest:1", tc.params)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}

	lines, err := svc.ListItems(ctx, "guest:1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateItemOverwritesQuantity(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 2, 50))
	require.NoError(t, err)

	lines, err := svc.UpdateItem(ctx, "guest:1", "p1", "M", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 2, 50))
	require.NoError(t, err)

	lines, err := svc.UpdateItem(ctx, "guest:1", "p1", "M", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateItemNotFound(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.UpdateItem(ctx, "guest:1", "p1", "M", 2)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, "guest:1", "p1", "L", 2)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "guest:1", addParams("p2", "S", 1, 30))
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, "guest:1", "p1", "M")
	require.NoError(t, err)

	lines, err := svc.ListItems(ctx, "guest:1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	for _, line := range lines {
		assert.False(t, line.ProductID == "p1" && line.Size == "M")
	}
}

func TestRemoveItemNotFound(t *testing.T) {
	svc := setupCartTest()

	_, err := svc.RemoveItem(context.Background(), "guest:1", "p1", "M")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	require.NoError(t, svc.Clear(ctx, "guest:1"))

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "guest:1"))
	require.NoError(t, svc.Clear(ctx, "guest:1"))

	lines, err := svc.ListItems(ctx, "guest:1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTotalsEndToEnd(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 2, 50))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)

	lines, err := svc.ListItems(ctx, "guest:1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	totals, err := svc.Totals(ctx, "guest:1")
	require.NoError(t, err)
	assert.Equal(t, 150.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Shipping)
	assert.Equal(t, 160.0, totals.Total)

	// Calling again without mutation yields identical results.
	again, err := svc.Totals(ctx, "guest:1")
	require.NoError(t, err)
	assert.Equal(t, totals, again)
}

func TestTotalsEmptyForAbsentCart(t *testing.T) {
	svc := setupCartTest()

	totals, err := svc.Totals(context.Background(), "guest:nobody")
	require.NoError(t, err)
	assert.Equal(t, entity.Totals{Subtotal: 0, Shipping: 0, Total: 0}, totals)
}

func TestCartsAreIsolatedByOwner(t *testing.T) {
	svc := setupCartTest()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "guest:1", addParams("p1", "M", 1, 50))
	require.NoError(t, err)

	lines, err := svc.ListItems(ctx, "guest:2")
	require.NoError(t, err)
	assert.Empty(t, lines)
}
