package repository

import (
	"context"
	"database/sql"

	"github.com/sentience-labs/x402-gateway/internal/models"
)

// ReceiptRepository persists settled payments in PostgreSQL.
type ReceiptRepository struct {
	db *sql.DB
}

func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payment_receipts (
			payment_id VARCHAR(64) PRIMARY KEY,
			route VARCHAR(255) NOT NULL,
			payer VARCHAR(255) NOT NULL,
			amount VARCHAR(64) NOT NULL,
			tx_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_receipts_payer ON payment_receipts(payer)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *ReceiptRepository) Insert(ctx context.Context, receipt models.Receipt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_receipts (payment_id, route, payer, amount, tx_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_id) DO NOTHING
	`, receipt.PaymentID, receipt.Route, receipt.Payer, receipt.Amount, receipt.TxHash)
	return err
}

func (r *ReceiptRepository) ListRoutesByPayer(ctx context.Context, payer string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT route FROM payment_receipts WHERE payer = $1 ORDER BY route
	`, payer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []string
	for rows.Next() {
		var route string
		if err := rows.Scan(&route); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}
