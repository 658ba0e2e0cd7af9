package warehouse

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

// querier dipenuhi oleh *pgxpool.Pool maupun pgx.Tx, supaya query baca bisa
// dipakai di dalam dan di luar transaksi.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create menjalankan protokol reservasi stok dalam SATU transaksi:
// per item (urut sesuai request) lock baris product (FOR UPDATE), cek
// ketersediaan, kurangi stok, akumulasi harga; lalu tulis order + items.
// Gagal di item mana pun -> rollback total, tidak ada efek parsial.
// Dua reservasi paralel atas product yang sama diserialisasi oleh row lock,
// jadi stok tidak pernah negatif.
func (r *OrderRepo) Create(ctx context.Context, in OrderInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_name, status, total_price)
		VALUES ($1, $2, 0)
		RETURNING id, customer_name, status, created_at`,
		in.CustomerName, StatusPending).
		Scan(&o.ID, &o.CustomerName, &o.Status, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}

	var total float64
	o.Items = make([]OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, err := scanProduct(tx.QueryRow(ctx,
			`SELECT `+productCols+` FROM products WHERE id = $1 FOR UPDATE`, it.ProductID))
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return Order{}, err
		}
		if p.Quantity < it.Quantity {
			return Order{}, &InsufficientStockError{
				ProductID: it.ProductID, Available: p.Quantity, Requested: it.Quantity,
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $2, updated_at = now()
			WHERE id = $1`, it.ProductID, it.Quantity); err != nil {
			return Order{}, err
		}
		p.Quantity -= it.Quantity

		item := OrderItem{OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity}
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id`, o.ID, it.ProductID, it.Quantity).Scan(&item.ID); err != nil {
			return Order{}, err
		}
		snapshot := p
		item.Product = &snapshot

		// harga dievaluasi saat reservasi; perubahan price setelahnya tidak
		// mengubah order historis
		total += p.Price * float64(it.Quantity)
		o.Items = append(o.Items, item)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET total_price = $2 WHERE id = $1`, o.ID, total); err != nil {
		return Order{}, err
	}
	o.TotalPrice = total

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID int64) (Order, error) {
	return r.get(ctx, r.DB, orderID)
}

func (r *OrderRepo) get(ctx context.Context, q querier, orderID int64) (Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, customer_name, status, total_price, created_at
		FROM orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.CustomerName, &o.Status, &o.TotalPrice, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}

	items, err := r.itemsFor(ctx, q, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, `+prefixedProductCols("p")+`
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]OrderItem, error) {
	items := make([]OrderItem, 0, 4)
	for rows.Next() {
		var it OrderItem
		var p Product
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		it.Product = &p
		items = append(items, it)
	}
	return items, rows.Err()
}

func prefixedProductCols(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".description, " +
		alias + ".price, " + alias + ".quantity, " + alias + ".created_at, " + alias + ".updated_at"
}

func (r *OrderRepo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_name, status, total_price, created_at
		FROM orders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]int{}
	out := make([]Order, 0, 16)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = []OrderItem{}
		byID[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.DB.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, `+prefixedProductCols("p")+`
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		ORDER BY oi.order_id, oi.id`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	items, err := collectItems(itemRows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := byID[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, nil
}

// StatusChange: hasil transisi status, termasuk data untuk event downstream.
type StatusChange struct {
	Order     Order
	OldStatus Status
	Restocked []RestockedItem
}

// UpdateStatus menerapkan state machine status order. Masuk ke cancelled
// memicu kompensasi: stok tiap item dikembalikan ke product-nya, atomik
// bersama penulisan status (dua-duanya terjadi atau tidak sama sekali).
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID int64, label string) (StatusChange, error) {
	next, err := ParseStatus(label)
	if err != nil {
		return StatusChange{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return StatusChange{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusChange{}, ErrOrderNotFound
	}
	if err != nil {
		return StatusChange{}, err
	}
	if !CanTransition(current, next) {
		return StatusChange{}, ErrOrderCancelled
	}

	var restocked []RestockedItem
	if next == StatusCancelled {
		restocked, err = r.restock(ctx, tx, orderID)
		if err != nil {
			return StatusChange{}, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, next); err != nil {
		return StatusChange{}, err
	}

	o, err := r.get(ctx, tx, orderID)
	if err != nil {
		return StatusChange{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return StatusChange{}, err
	}
	return StatusChange{Order: o, OldStatus: current, Restocked: restocked}, nil
}

// restock mengembalikan quantity tiap item order ke product-nya (kompensasi
// cancel). Dipanggil di dalam transaksi UpdateStatus.
func (r *OrderRepo) restock(ctx context.Context, tx pgx.Tx, orderID int64) ([]RestockedItem, error) {
	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []RestockedItem
	for rows.Next() {
		var rec RestockedItem
		if err := rows.Scan(&rec.ProductID, &rec.Quantity); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity + $2, updated_at = now()
			WHERE id = $1`, rec.ProductID, rec.Quantity); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// Delete menghapus order + items (cascade). Sengaja TIDAK mengembalikan
// stok; kompensasi hanya berlaku untuk cancel. Lihat DESIGN.md.
func (r *OrderRepo) Delete(ctx context.Context, orderID int64) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := r.get(ctx, tx, orderID)
	if err != nil {
		return Order{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}
