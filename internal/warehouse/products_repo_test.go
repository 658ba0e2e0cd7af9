package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestUpsertMergesQuantityByName(t *testing.T) {
	db := setupDB(t)
	repo := &ProductRepo{DB: db}
	ctx := context.Background()

	first, err := repo.Upsert(ctx, ProductInput{
		Name: "Носки", Description: strptr("Теплые зимние носки"), Price: 199.99, Quantity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, first.Quantity)

	// name sama: quantity dijumlah, price/description lama tidak berubah
	second, err := repo.Upsert(ctx, ProductInput{
		Name: "Носки", Description: strptr("lain"), Price: 5, Quantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 120, second.Quantity)
	assert.Equal(t, 199.99, second.Price)
	require.NotNil(t, second.Description)
	assert.Equal(t, "Теплые зимние носки", *second.Description)
}

func TestUpsertConcurrentSameName(t *testing.T) {
	db := setupDB(t)
	repo := &ProductRepo{DB: db}

	const n = 10
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := repo.Upsert(context.Background(), ProductInput{Name: "race-item", Price: 1.0, Quantity: 1})
			return err
		})
	}
	require.NoError(t, g.Wait())

	// harus konvergen ke SATU baris dengan quantity terjumlah
	ctx := context.Background()
	var rows, qty int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM products WHERE name = 'race-item'`).
		Scan(&rows, &qty))
	assert.Equal(t, 1, rows)
	assert.Equal(t, n, qty)
}

func TestAdjustQuantity(t *testing.T) {
	db := setupDB(t)
	repo := &ProductRepo{DB: db}
	ctx := context.Background()
	p := mustUpsert(t, repo, "Widget", 10, 5)

	t.Run("positive delta", func(t *testing.T) {
		got, err := repo.AdjustQuantity(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity)
	})

	t.Run("negative delta within stock", func(t *testing.T) {
		got, err := repo.AdjustQuantity(ctx, p.ID, -8)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})

	t.Run("would go negative", func(t *testing.T) {
		_, err := repo.AdjustQuantity(ctx, p.ID, -1)
		var stock *InsufficientStockError
		require.ErrorAs(t, err, &stock)
		assert.Equal(t, p.ID, stock.ProductID)
		assert.Equal(t, 0, stock.Available)
		assert.Equal(t, 1, stock.Requested)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.AdjustQuantity(ctx, 9999, -1)
		require.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductGetUpdateDelete(t *testing.T) {
	db := setupDB(t)
	repo := &ProductRepo{DB: db}
	ctx := context.Background()
	p := mustUpsert(t, repo, "Продукт A", 100, 5)

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	updated, err := repo.Update(ctx, p.ID, ProductInput{Name: "Продукт A+", Price: 150, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, "Продукт A+", updated.Name)
	assert.Equal(t, 7, updated.Quantity)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = repo.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = repo.Update(ctx, p.ID, ProductInput{Name: "x", Price: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = repo.Delete(ctx, p.ID)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductList(t *testing.T) {
	db := setupDB(t)
	repo := &ProductRepo{DB: db}
	ctx := context.Background()
	mustUpsert(t, repo, "apple", 3.0, 10)
	mustUpsert(t, repo, "banana", 1.0, 30)
	mustUpsert(t, repo, "cherry", 2.0, 20)

	t.Run("sort by price desc", func(t *testing.T) {
		page, err := repo.List(ctx, ListParams{SortBy: "price", SortOrder: "desc"})
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, "apple", page.Items[0].Name)
		assert.Equal(t, "banana", page.Items[2].Name)
	})

	t.Run("limit offset", func(t *testing.T) {
		page, err := repo.List(ctx, ListParams{Limit: 2, Offset: 2, SortBy: "name"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Limit)
		assert.Equal(t, "cherry", page.Items[0].Name)
	})

	t.Run("name filter", func(t *testing.T) {
		page, err := repo.List(ctx, ListParams{Query: "an"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "banana", page.Items[0].Name)
	})

	t.Run("bad sort column rejected", func(t *testing.T) {
		_, err := repo.List(ctx, ListParams{SortBy: "created_at"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})
}
