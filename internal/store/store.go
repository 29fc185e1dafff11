package store

import (
	"context"
	"errors"

	"shopledger/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

type Repository interface {
	ReplaceDailyRecord(ctx context.Context, record domain.DailyShopRecord) (*domain.DailyShopRecord, error)
	GetDailyRecord(ctx context.Context, shopName string, date string) (*domain.DailyShopRecord, error)

	CreateSpend(ctx context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error)
	ListSpends(ctx context.Context, date string) ([]domain.SpendEntry, error)
	UpdateSpend(ctx context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error)
	DeleteSpend(ctx context.Context, date string, id string) error

	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	ListInventoryItems(ctx context.Context, shopName string) ([]domain.InventoryItem, error)
	GetInventoryItem(ctx context.Context, shopName string, id string) (*domain.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, shopName string, id string) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, email string, password string) error
}
