package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/salesledger/internal/models"
	"github.com/mmynk/salesledger/internal/storage"
)

const saleColumns = `id, user_id, product_name, amount, date_of_sale, status, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSale persists a new sale to the database.
func (s *SQLiteStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if sale.Status == "" {
		sale.Status = models.StatusPending
	}
	now := time.Now().Unix()
	if sale.CreatedAt == 0 {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = sale.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.UserID, sale.ProductName, sale.Amount,
		models.FormatDate(sale.DateOfSale), string(sale.Status),
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("owner %s: %w", sale.UserID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	return nil
}

// GetSale retrieves a sale by ID.
func (s *SQLiteStore) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// ListSales retrieves all sales matching the filter.
func (s *SQLiteStore) ListSales(ctx context.Context, filter storage.SaleFilter) ([]*models.Sale, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date_of_sale, created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	return sales, nil
}

// UpdateSale writes the mutable fields of a sale. user_id and created_at are left untouched.
func (s *SQLiteStore) UpdateSale(ctx context.Context, sale *models.Sale) error {
	sale.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE sales SET product_name = ?, amount = ?, date_of_sale = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		sale.ProductName, sale.Amount, models.FormatDate(sale.DateOfSale),
		string(sale.Status), sale.UpdatedAt, sale.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sale %s: %w", sale.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteSale removes a sale by ID.
func (s *SQLiteStore) DeleteSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sale %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func scanSale(row rowScanner) (*models.Sale, error) {
	sale := &models.Sale{}
	var date, status string
	if err := row.Scan(&sale.ID, &sale.UserID, &sale.ProductName, &sale.Amount,
		&date, &status, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
		return nil, err
	}

	d, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("sale %s: stored date: %w", sale.ID, err)
	}
	sale.DateOfSale = d
	sale.Status = models.SaleStatus(status)

	return sale, nil
}
