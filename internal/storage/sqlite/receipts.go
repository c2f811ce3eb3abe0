package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/olchaban/receipts/internal/models"
	"github.com/olchaban/receipts/internal/storage"
)

// CreateReceipt persists the receipt header and all line items in one
// transaction, resolving each item through the product catalog.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO receipts (total, created_at, payment_type, payment_amount, user_id) VALUES (?, ?, ?, ?, ?)",
		receipt.Total,
		receipt.CreatedAt.UTC().Format(timeLayout),
		string(receipt.PaymentType),
		receipt.PaymentAmount,
		receipt.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read receipt id: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]

		productID, err := resolveProduct(ctx, tx, item.Name, item.Price)
		if err != nil {
			return err
		}
		item.ProductID = productID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipt_items (receipt_id, product_id, quantity) VALUES (?, ?, ?)",
			id, productID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	receipt.ID = id
	return nil
}

// GetReceipt retrieves a receipt by id, including its line items and
// owner username.
func (s *SQLiteStore) GetReceipt(ctx context.Context, id int64) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var createdAt, paymentType string

	err := s.db.QueryRowContext(ctx,
		`SELECT r.id, r.total, r.created_at, r.payment_type, r.payment_amount, r.user_id, u.username
		 FROM receipts r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = ?`,
		id,
	).Scan(&receipt.ID, &receipt.Total, &createdAt, &paymentType,
		&receipt.PaymentAmount, &receipt.UserID, &receipt.OwnerUsername)
	if err == sql.ErrNoRows {
		return nil, storage.ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	receipt.PaymentType = models.PaymentType(paymentType)
	receipt.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt timestamp: %w", err)
	}

	if err := s.loadItems(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// ListReceipts returns the user's receipts matching the filter,
// ordered by primary key.
func (s *SQLiteStore) ListReceipts(ctx context.Context, userID int64, filter models.ReceiptFilter) ([]*models.Receipt, error) {
	var (
		conds = []string{"r.user_id = ?"}
		args  = []any{userID}
	)
	if filter.StartDate != nil {
		conds = append(conds, "r.created_at >= ?")
		args = append(args, filter.StartDate.UTC().Format(timeLayout))
	}
	if filter.EndDate != nil {
		conds = append(conds, "r.created_at <= ?")
		args = append(args, filter.EndDate.UTC().Format(timeLayout))
	}
	if filter.MinTotal != nil {
		conds = append(conds, "r.total >= ?")
		args = append(args, *filter.MinTotal)
	}
	if filter.PaymentType != "" {
		conds = append(conds, "r.payment_type = ?")
		args = append(args, string(filter.PaymentType))
	}

	query := fmt.Sprintf(
		`SELECT r.id, r.total, r.created_at, r.payment_type, r.payment_amount, r.user_id, u.username
		 FROM receipts r
		 JOIN users u ON u.id = r.user_id
		 WHERE %s
		 ORDER BY r.id
		 LIMIT ? OFFSET ?`,
		strings.Join(conds, " AND "),
	)
	args = append(args, filter.Limit, filter.Skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		receipt := &models.Receipt{}
		var createdAt, paymentType string

		if err := rows.Scan(&receipt.ID, &receipt.Total, &createdAt, &paymentType,
			&receipt.PaymentAmount, &receipt.UserID, &receipt.OwnerUsername); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}

		receipt.PaymentType = models.PaymentType(paymentType)
		receipt.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse receipt timestamp: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	for _, receipt := range receipts {
		if err := s.loadItems(ctx, receipt); err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

// loadItems fetches the line items for a receipt in stored order.
func (s *SQLiteStore) loadItems(ctx context.Context, receipt *models.Receipt) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ri.product_id, p.name, p.price, ri.quantity
		 FROM receipt_items ri
		 JOIN products p ON p.id = ri.product_id
		 WHERE ri.receipt_id = ?
		 ORDER BY ri.rowid`,
		receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		receipt.Items = append(receipt.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate line items: %w", err)
	}
	return nil
}
