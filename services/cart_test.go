package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCartReplacesPreviousCart(t *testing.T) {
	db := newTestDB(t)
	store := NewCartStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, 1, []SavedCartLine{{ProductID: 10, Quantity: 1}, {ProductID: 11, Quantity: 2}})
	require.NoError(t, err)
	_, err = store.Save(ctx, 2, []SavedCartLine{{ProductID: 10, Quantity: 5}})
	require.NoError(t, err)

	_, err = store.Save(ctx, 1, []SavedCartLine{{ProductID: 12, Quantity: 3}})
	require.NoError(t, err)

	items, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(12), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)

	others, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestSaveEmptyCartClearsIt(t *testing.T) {
	db := newTestDB(t)
	store := NewCartStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, 1, []SavedCartLine{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)
	_, err = store.Save(ctx, 1, nil)
	require.NoError(t, err)

	items, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveCartRejectsBadLines(t *testing.T) {
	db := newTestDB(t)
	_, err := NewCartStore(db).Save(context.Background(), 1, []SavedCartLine{{ProductID: 10, Quantity: 0}})
	assert.True(t, IsKind(err, KindValidation))
}
