package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/store"
	"shopledger/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ReplaceDailyRecord(ctx context.Context, record domain.DailyShopRecord) (*domain.DailyShopRecord, error) {
	if record.ShopName == "" || record.Date == "" {
		return nil, store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_records (
			shop_name, record_date, upi, card,
			notes500, notes200, notes100, notes50, notes20, notes10,
			expenses, counter_cash, cash, pos_sale, total_sale, remaining,
			cash_given, submitted_by, submission_date
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (shop_name, record_date) DO UPDATE SET
			upi = EXCLUDED.upi,
			card = EXCLUDED.card,
			notes500 = EXCLUDED.notes500,
			notes200 = EXCLUDED.notes200,
			notes100 = EXCLUDED.notes100,
			notes50 = EXCLUDED.notes50,
			notes20 = EXCLUDED.notes20,
			notes10 = EXCLUDED.notes10,
			expenses = EXCLUDED.expenses,
			counter_cash = EXCLUDED.counter_cash,
			cash = EXCLUDED.cash,
			pos_sale = EXCLUDED.pos_sale,
			total_sale = EXCLUDED.total_sale,
			remaining = EXCLUDED.remaining,
			cash_given = EXCLUDED.cash_given,
			submitted_by = EXCLUDED.submitted_by,
			submission_date = EXCLUDED.submission_date
	`, record.ShopName, record.Date, record.UPI, record.Card,
		record.Notes500, record.Notes200, record.Notes100, record.Notes50, record.Notes20, record.Notes10,
		record.Expenses, record.CounterCash, record.Cash, record.PosSale, record.TotalSale, record.Remaining,
		record.CashGiven, record.SubmittedBy, record.SubmissionDate)
	if err != nil {
		return nil, err
	}

	saved := record
	return &saved, nil
}

func (s *Store) GetDailyRecord(ctx context.Context, shopName string, date string) (*domain.DailyShopRecord, error) {
	var record domain.DailyShopRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT shop_name, record_date, upi, card,
			notes500, notes200, notes100, notes50, notes20, notes10,
			expenses, counter_cash, cash, pos_sale, total_sale, remaining,
			cash_given, submitted_by, submission_date
		FROM daily_records
		WHERE shop_name = $1 AND record_date = $2
	`, shopName, date).Scan(
		&record.ShopName, &record.Date, &record.UPI, &record.Card,
		&record.Notes500, &record.Notes200, &record.Notes100, &record.Notes50, &record.Notes20, &record.Notes10,
		&record.Expenses, &record.CounterCash, &record.Cash, &record.PosSale, &record.TotalSale, &record.Remaining,
		&record.CashGiven, &record.SubmittedBy, &record.SubmissionDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateSpend(ctx context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error) {
	if entry.Date == "" || strings.TrimSpace(entry.Title) == "" {
		return nil, store.ErrInvalidRecord
	}
	if entry.ID == "" {
		entry.ID = xid.New("spend")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_spends (id, spend_date, title, price, submitted_by, submission_date)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, entry.ID, entry.Date, entry.Title, entry.Price, entry.SubmittedBy, entry.SubmissionDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := entry
	return &created, nil
}

func (s *Store) ListSpends(ctx context.Context, date string) ([]domain.SpendEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, spend_date, title, price, submitted_by, submission_date
		FROM daily_spends
		WHERE spend_date = $1
		ORDER BY id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.SpendEntry, 0, 16)
	for rows.Next() {
		var entry domain.SpendEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Title, &entry.Price, &entry.SubmittedBy, &entry.SubmissionDate); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Store) UpdateSpend(ctx context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error) {
	if entry.Date == "" || entry.ID == "" || strings.TrimSpace(entry.Title) == "" {
		return nil, store.ErrInvalidRecord
	}

	var updated domain.SpendEntry
	err := s.db.QueryRowContext(ctx, `
		UPDATE daily_spends
		SET title = $3, price = $4
		WHERE spend_date = $1 AND id = $2
		RETURNING id, spend_date, title, price, submitted_by, submission_date
	`, entry.Date, entry.ID, entry.Title, entry.Price).Scan(
		&updated.ID, &updated.Date, &updated.Title, &updated.Price, &updated.SubmittedBy, &updated.SubmissionDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteSpend(ctx context.Context, date string, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM daily_spends WHERE spend_date = $1 AND id = $2
	`, date, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ShopName == "" || strings.TrimSpace(item.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, shop_name, name, unit, opening, purchased, wastage, sold)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, item.ID, item.ShopName, item.Name, item.Unit, item.Opening, item.Purchased, item.Wastage, item.Sold)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := item
	return &created, nil
}

func (s *Store) ListInventoryItems(ctx context.Context, shopName string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shop_name, name, unit, opening, purchased, wastage, sold
		FROM inventory_items
		WHERE shop_name = $1
		ORDER BY name, id
	`, shopName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 32)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.ShopName, &item.Name, &item.Unit, &item.Opening, &item.Purchased, &item.Wastage, &item.Sold); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Store) GetInventoryItem(ctx context.Context, shopName string, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shop_name, name, unit, opening, purchased, wastage, sold
		FROM inventory_items
		WHERE shop_name = $1 AND id = $2
	`, shopName, id).Scan(&item.ID, &item.ShopName, &item.Name, &item.Unit, &item.Opening, &item.Purchased, &item.Wastage, &item.Sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ShopName == "" || item.ID == "" || strings.TrimSpace(item.Name) == "" {
		return nil, store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = $3, unit = $4, opening = $5, purchased = $6, wastage = $7, sold = $8
		WHERE shop_name = $1 AND id = $2
	`, item.ShopName, item.ID, item.Name, item.Unit, item.Opening, item.Purchased, item.Wastage, item.Sold)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := item
	return &updated, nil
}

func (s *Store) DeleteInventoryItem(ctx context.Context, shopName string, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory_items WHERE shop_name = $1 AND id = $2
	`, shopName, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, email, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRecord
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, password, role, active, created_at
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Email, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
