package warehouse

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, price, quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Upsert: insert product baru, atau kalau name sudah ada tambahkan quantity
// ke stok yang ada (price/description baris lama tidak disentuh). Satu
// statement atomik di atas unique constraint name (bukan read-then-write)
// supaya N caller paralel dengan name sama konvergen ke satu baris dengan
// quantity terjumlah.
func (r *ProductRepo) Upsert(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET quantity = products.quantity + EXCLUDED.quantity,
		    updated_at = now()
		RETURNING `+productCols,
		in.Name, in.Description, in.Price, in.Quantity)
	return scanProduct(row)
}

// AdjustQuantity: delta bertanda pada stok; guard quantity + delta >= 0 ada
// di dalam statement supaya tidak ada window antara cek dan update.
func (r *ProductRepo) AdjustQuantity(ctx context.Context, productID int64, delta int) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING `+productCols,
		productID, delta)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Product{}, err
	}

	// Tidak ada baris ter-update: bedakan product hilang vs stok kurang.
	var available int
	err = r.DB.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return Product{}, err
	}
	return Product{}, &InsufficientStockError{ProductID: productID, Available: available, Requested: -delta}
}

func (r *ProductRepo) Get(ctx context.Context, productID int64) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, productID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: productID}
	}
	return p, err
}

// Update: replace seluruh field (PUT). Quantity di sini set absolut, bukan
// delta; jalur merge ada di Upsert.
func (r *ProductRepo) Update(ctx context.Context, productID int64, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+productCols,
		productID, in.Name, in.Description, in.Price, in.Quantity)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: productID}
	}
	return p, err
}

func (r *ProductRepo) Delete(ctx context.Context, productID int64) (Product, error) {
	row := r.DB.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productCols, productID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: productID}
	}
	return p, err
}

type ListParams struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
	Query     string // filter substring pada name, kosong = semua
}

// sortCols: whitelist kolom sort, jangan pernah interpolasi input mentah.
var sortCols = map[string]string{
	"id":       "id",
	"name":     "name",
	"price":    "price",
	"quantity": "quantity",
}

func (p *ListParams) normalize() error {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.SortBy == "" {
		p.SortBy = "id"
	}
	if _, ok := sortCols[p.SortBy]; !ok {
		return &ValidationError{Field: "sort_by", Reason: "must be one of id, name, price, quantity"}
	}
	switch p.SortOrder {
	case "":
		p.SortOrder = "asc"
	case "asc", "desc":
	default:
		return &ValidationError{Field: "sort_order", Reason: "must be asc or desc"}
	}
	return nil
}

// List: proyeksi sederhana; membaca committed state, tidak ikut transaksi
// reservasi mana pun.
func (r *ProductRepo) List(ctx context.Context, params ListParams) (ProductPage, error) {
	if err := params.normalize(); err != nil {
		return ProductPage{}, err
	}

	filter := "%" + params.Query + "%"
	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE name ILIKE $1`, filter).Scan(&total); err != nil {
		return ProductPage{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE name ILIKE $1
		ORDER BY `+sortCols[params.SortBy]+` `+params.SortOrder+`
		LIMIT $2 OFFSET $3`,
		filter, params.Limit, params.Offset)
	if err != nil {
		return ProductPage{}, err
	}
	defer rows.Close()

	items := make([]Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return ProductPage{}, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Items: items, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}
