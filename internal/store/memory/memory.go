package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/store"
	"shopledger/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	recordsByKey    map[string]domain.DailyShopRecord
	spendsByDate    map[string]map[string]domain.SpendEntry
	inventoryByShop map[string]map[string]domain.InventoryItem
	usersByEmail    map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. These credentials
// are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		email    string
		password string
		role     string
	}{
		{"admin@shopledger.local", adminPwd, domain.RoleAdmin},
		{"staff@shopledger.local", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.email, err)
		}
		users[u.email] = domain.UserAccount{
			Email:     u.email,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	items := []domain.InventoryItem{
		{Name: "Orange Crate", Unit: "box", Opening: 12, Purchased: 4, Wastage: 1, Sold: 9},
		{Name: "Sugar Syrup", Unit: "L", Opening: 25, Purchased: 10, Wastage: 0, Sold: 18},
		{Name: "Paper Cups", Unit: "pack", Opening: 40, Purchased: 0, Wastage: 2, Sold: 22},
	}

	inventory := map[string]map[string]domain.InventoryItem{}
	for _, shop := range domain.ShopNames {
		inventory[shop] = map[string]domain.InventoryItem{}
	}
	for _, item := range items {
		item.ID = xid.New("inv")
		item.ShopName = domain.ShopNames[0]
		inventory[item.ShopName][item.ID] = item
	}

	return &Store{
		recordsByKey:    make(map[string]domain.DailyShopRecord),
		spendsByDate:    make(map[string]map[string]domain.SpendEntry),
		inventoryByShop: inventory,
		usersByEmail:    seedUsers(),
	}
}

func recordKey(shopName string, date string) string {
	return shopName + "|" + date
}

func (s *Store) ReplaceDailyRecord(_ context.Context, record domain.DailyShopRecord) (*domain.DailyShopRecord, error) {
	if record.ShopName == "" || record.Date == "" {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	s.recordsByKey[recordKey(record.ShopName, record.Date)] = record
	s.mu.Unlock()

	saved := record
	return &saved, nil
}

func (s *Store) GetDailyRecord(_ context.Context, shopName string, date string) (*domain.DailyShopRecord, error) {
	s.mu.RLock()
	record, ok := s.recordsByKey[recordKey(shopName, date)]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return &record, nil
}

func (s *Store) CreateSpend(_ context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error) {
	if entry.Date == "" || strings.TrimSpace(entry.Title) == "" {
		return nil, store.ErrInvalidRecord
	}
	if entry.ID == "" {
		entry.ID = xid.New("spend")
	}

	s.mu.Lock()
	day, ok := s.spendsByDate[entry.Date]
	if !ok {
		day = make(map[string]domain.SpendEntry)
		s.spendsByDate[entry.Date] = day
	}
	day[entry.ID] = entry
	s.mu.Unlock()

	created := entry
	return &created, nil
}

func (s *Store) ListSpends(_ context.Context, date string) ([]domain.SpendEntry, error) {
	s.mu.RLock()
	day := s.spendsByDate[date]
	entries := make([]domain.SpendEntry, 0, len(day))
	for _, entry := range day {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (s *Store) UpdateSpend(_ context.Context, entry domain.SpendEntry) (*domain.SpendEntry, error) {
	if entry.Date == "" || entry.ID == "" || strings.TrimSpace(entry.Title) == "" {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.spendsByDate[entry.Date]
	if !ok {
		return nil, store.ErrNotFound
	}
	existing, ok := day[entry.ID]
	if !ok {
		return nil, store.ErrNotFound
	}

	existing.Title = entry.Title
	existing.Price = entry.Price
	day[entry.ID] = existing

	updated := existing
	return &updated, nil
}

func (s *Store) DeleteSpend(_ context.Context, date string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.spendsByDate[date]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := day[id]; !ok {
		return store.ErrNotFound
	}
	delete(day, id)
	return nil
}

func (s *Store) CreateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ShopName == "" || strings.TrimSpace(item.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}

	s.mu.Lock()
	shop, ok := s.inventoryByShop[item.ShopName]
	if !ok {
		shop = make(map[string]domain.InventoryItem)
		s.inventoryByShop[item.ShopName] = shop
	}
	shop[item.ID] = item
	s.mu.Unlock()

	created := item
	return &created, nil
}

func (s *Store) ListInventoryItems(_ context.Context, shopName string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	shop := s.inventoryByShop[shopName]
	items := make([]domain.InventoryItem, 0, len(shop))
	for _, item := range shop {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) GetInventoryItem(_ context.Context, shopName string, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	item, ok := s.inventoryByShop[shopName][id]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *Store) UpdateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ShopName == "" || item.ID == "" || strings.TrimSpace(item.Name) == "" {
		return nil, store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.inventoryByShop[item.ShopName]
	if !ok {
		return nil, store.ErrNotFound
	}
	if _, ok := shop[item.ID]; !ok {
		return nil, store.ErrNotFound
	}
	shop[item.ID] = item

	updated := item
	return &updated, nil
}

func (s *Store) DeleteInventoryItem(_ context.Context, shopName string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.inventoryByShop[shopName]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := shop[id]; !ok {
		return store.ErrNotFound
	}
	delete(shop, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrInvalidRecord
	}
	user.Email = email
	s.usersByEmail[email] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	users := make([]domain.UserAccount, 0, len(s.usersByEmail))
	for _, user := range s.usersByEmail {
		users = append(users, user)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByEmail[email] = user
	return nil
}
