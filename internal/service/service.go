package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"shopledger/backend/internal/dateutil"
	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/ledger"
	"shopledger/backend/internal/report"
	"shopledger/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// fetchConcurrency bounds the per-(shop, day) read fan-out.
const fetchConcurrency = 8

type Service struct {
	repo    store.Repository
	reports *report.Engine
}

func New(repo store.Repository, reports *report.Engine) *Service {
	if reports == nil {
		reports = report.NewEngine(nil, 0)
	}

	return &Service{
		repo:    repo,
		reports: reports,
	}
}

// SubmitDailyRecord validates the form, recomputes every derived figure and
// replaces the (shop, date) record wholesale. Resubmitting the same day
// overwrites the previous submission.
func (s *Service) SubmitDailyRecord(ctx context.Context, shopName string, date string, req domain.SubmitRecordRequest) (domain.DailyShopRecord, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.DailyShopRecord{}, fmt.Errorf("authentication required")
	}
	if !domain.IsShop(shopName) {
		return domain.DailyShopRecord{}, fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return domain.DailyShopRecord{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}

	input := ledger.Input{
		UPI:         req.UPI,
		Card:        req.Card,
		Notes500:    req.Notes500,
		Notes200:    req.Notes200,
		Notes100:    req.Notes100,
		Notes50:     req.Notes50,
		Notes20:     req.Notes20,
		Notes10:     req.Notes10,
		Expenses:    req.Expenses,
		CounterCash: req.CounterCash,
		PosSale:     req.PosSale,
		CashGiven:   req.CashGiven,
	}
	if fields := ledger.Validate(input); len(fields) > 0 {
		return domain.DailyShopRecord{}, &domain.ValidationError{Fields: fields}
	}
	totals := ledger.Compute(input)

	record := domain.DailyShopRecord{
		ShopName:       shopName,
		Date:           dateutil.FormatDay(day),
		UPI:            ledger.ParseAmount(req.UPI),
		Card:           ledger.ParseAmount(req.Card),
		Notes500:       ledger.ParseCount(req.Notes500),
		Notes200:       ledger.ParseCount(req.Notes200),
		Notes100:       ledger.ParseCount(req.Notes100),
		Notes50:        ledger.ParseCount(req.Notes50),
		Notes20:        ledger.ParseCount(req.Notes20),
		Notes10:        ledger.ParseCount(req.Notes10),
		Expenses:       ledger.ParseAmount(req.Expenses),
		CounterCash:    ledger.ParseAmount(req.CounterCash),
		Cash:           totals.Cash,
		PosSale:        ledger.ParseAmount(req.PosSale),
		TotalSale:      totals.TotalSale,
		Remaining:      totals.Remaining,
		CashGiven:      ledger.ParseAmount(req.CashGiven),
		SubmittedBy:    actor.Email,
		SubmissionDate: dateutil.Timestamp(),
	}

	saved, err := s.repo.ReplaceDailyRecord(ctx, record)
	if err != nil {
		return domain.DailyShopRecord{}, err
	}

	s.reports.Invalidate(ctx)
	log.Printf("[service] daily record replaced shop=%q date=%s by=%s", saved.ShopName, saved.Date, actor.Email)
	return *saved, nil
}

func (s *Service) GetDailyRecord(ctx context.Context, shopName string, date string) (domain.DailyShopRecord, error) {
	if !domain.IsShop(shopName) {
		return domain.DailyShopRecord{}, fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return domain.DailyShopRecord{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}

	record, err := s.repo.GetDailyRecord(ctx, shopName, dateutil.FormatDay(day))
	if err != nil {
		return domain.DailyShopRecord{}, err
	}
	return *record, nil
}

// fetchRecords reads every (shop, day) record for the given day keys
// concurrently, preserving day-then-shop order. Missing records are skipped.
func (s *Service) fetchRecords(ctx context.Context, days []string) ([]domain.DailyShopRecord, error) {
	slots := make([]*domain.DailyShopRecord, len(days)*len(domain.ShopNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for di, day := range days {
		for si, shop := range domain.ShopNames {
			idx := di*len(domain.ShopNames) + si
			day, shop := day, shop
			g.Go(func() error {
				record, err := s.repo.GetDailyRecord(gctx, shop, day)
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return nil
					}
					return err
				}
				slots[idx] = record
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]domain.DailyShopRecord, 0, len(slots))
	for _, record := range slots {
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

// RangeReport serves the dashboard for an inclusive date range, from cache
// when a report built after the last submission exists.
func (s *Service) RangeReport(ctx context.Context, from string, to string) (domain.RangeReport, error) {
	days, err := dateutil.DayRange(from, to)
	if err != nil {
		return domain.RangeReport{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}
	from = days[0]
	to = days[len(days)-1]

	if cached, ok := s.reports.Cached(ctx, from, to); ok {
		return *cached, nil
	}

	records, err := s.fetchRecords(ctx, days)
	if err != nil {
		return domain.RangeReport{}, err
	}
	return s.reports.Build(ctx, from, to, records), nil
}

// DailyComparison compares yesterday's sales against the day before, per
// shop and overall.
func (s *Service) DailyComparison(ctx context.Context) (domain.DailyComparison, error) {
	date := dateutil.Yesterday()
	previousDate := dateutil.DayBeforeYesterday()

	records, err := s.fetchRecords(ctx, []string{previousDate, date})
	if err != nil {
		return domain.DailyComparison{}, err
	}

	current := make(map[string]float64, len(domain.ShopNames))
	previous := make(map[string]float64, len(domain.ShopNames))
	for _, rec := range records {
		switch rec.Date {
		case date:
			current[rec.ShopName] += rec.TotalSale
		case previousDate:
			previous[rec.ShopName] += rec.TotalSale
		}
	}

	comparison := domain.DailyComparison{
		Date:         date,
		PreviousDate: previousDate,
		Shops:        make([]domain.ShopComparison, 0, len(domain.ShopNames)),
	}
	for _, shop := range domain.ShopNames {
		comparison.Shops = append(comparison.Shops, domain.ShopComparison{
			ShopName:      shop,
			Total:         current[shop],
			TotalDisplay:  report.FormatIndian(current[shop]),
			PreviousTotal: previous[shop],
			ChangePercent: report.PercentageChange(current[shop], previous[shop]),
		})
		comparison.Total += current[shop]
		comparison.PreviousTotal += previous[shop]
	}
	comparison.TotalDisplay = report.FormatIndian(comparison.Total)
	comparison.ChangePercent = report.PercentageChange(comparison.Total, comparison.PreviousTotal)

	return comparison, nil
}

func (s *Service) AddSpend(ctx context.Context, req domain.SpendCreateRequest) (domain.SpendEntry, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.SpendEntry{}, fmt.Errorf("admin role required")
	}
	day, err := dateutil.ParseDay(req.Date)
	if err != nil {
		return domain.SpendEntry{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return domain.SpendEntry{}, fmt.Errorf("%w: spend title is required", store.ErrInvalidRecord)
	}
	if req.Price <= 0 {
		return domain.SpendEntry{}, fmt.Errorf("%w: spend price must be positive", store.ErrInvalidRecord)
	}

	entry, err := s.repo.CreateSpend(ctx, domain.SpendEntry{
		Date:           dateutil.FormatDay(day),
		Title:          strings.TrimSpace(req.Title),
		Price:          req.Price,
		SubmittedBy:    actor.Email,
		SubmissionDate: dateutil.Timestamp(),
	})
	if err != nil {
		return domain.SpendEntry{}, err
	}
	return *entry, nil
}

func (s *Service) ListSpends(ctx context.Context, date string) ([]domain.SpendEntry, error) {
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}
	return s.repo.ListSpends(ctx, dateutil.FormatDay(day))
}

func (s *Service) UpdateSpend(ctx context.Context, date string, id string, req domain.SpendUpdateRequest) (domain.SpendEntry, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.SpendEntry{}, fmt.Errorf("admin role required")
	}
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return domain.SpendEntry{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}

	existing, err := s.repo.ListSpends(ctx, dateutil.FormatDay(day))
	if err != nil {
		return domain.SpendEntry{}, err
	}
	var entry *domain.SpendEntry
	for i := range existing {
		if existing[i].ID == id {
			entry = &existing[i]
			break
		}
	}
	if entry == nil {
		return domain.SpendEntry{}, store.ErrNotFound
	}

	if req.Title != nil {
		entry.Title = strings.TrimSpace(*req.Title)
	}
	if req.Price != nil {
		entry.Price = *req.Price
	}
	if strings.TrimSpace(entry.Title) == "" {
		return domain.SpendEntry{}, fmt.Errorf("%w: spend title is required", store.ErrInvalidRecord)
	}
	if entry.Price <= 0 {
		return domain.SpendEntry{}, fmt.Errorf("%w: spend price must be positive", store.ErrInvalidRecord)
	}

	updated, err := s.repo.UpdateSpend(ctx, *entry)
	if err != nil {
		return domain.SpendEntry{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteSpend(ctx context.Context, date string, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required")
	}
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}
	return s.repo.DeleteSpend(ctx, dateutil.FormatDay(day), id)
}

// MonthlySpends aggregates spend totals per day across a full MM-YYYY month,
// zero-filling days without spends.
func (s *Service) MonthlySpends(ctx context.Context, month string) (domain.MonthlySpendReport, error) {
	days, err := dateutil.MonthDays(month)
	if err != nil {
		return domain.MonthlySpendReport{}, fmt.Errorf("%w: %v", store.ErrInvalidRecord, err)
	}

	perDay := make([][]domain.SpendEntry, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			entries, err := s.repo.ListSpends(gctx, day)
			if err != nil {
				return err
			}
			perDay[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.MonthlySpendReport{}, err
	}

	spends := make([]domain.SpendEntry, 0, 64)
	for _, entries := range perDay {
		spends = append(spends, entries...)
	}
	data, total := report.SpendSeries(days, spends)

	return domain.MonthlySpendReport{
		Month:        month,
		Categories:   days,
		Series:       domain.ChartSeries{Name: "Spends", Data: data},
		Total:        total,
		TotalDisplay: report.FormatIndian(total),
	}, nil
}

func (s *Service) ListInventory(ctx context.Context, shopName string) ([]domain.InventoryItemView, error) {
	if !domain.IsShop(shopName) {
		return nil, fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}

	items, err := s.repo.ListInventoryItems(ctx, shopName)
	if err != nil {
		return nil, err
	}

	views := make([]domain.InventoryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, domain.NewInventoryItemView(item))
	}
	return views, nil
}

func (s *Service) AddInventoryItem(ctx context.Context, shopName string, req domain.InventoryCreateRequest) (domain.InventoryItemView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.InventoryItemView{}, fmt.Errorf("admin role required")
	}
	if !domain.IsShop(shopName) {
		return domain.InventoryItemView{}, fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.InventoryItemView{}, fmt.Errorf("%w: item name is required", store.ErrInvalidRecord)
	}
	if !domain.IsUnit(req.Unit) {
		return domain.InventoryItemView{}, fmt.Errorf("%w: unknown unit %q", store.ErrInvalidRecord, req.Unit)
	}

	item, err := s.repo.CreateInventoryItem(ctx, domain.InventoryItem{
		ShopName:  shopName,
		Name:      strings.TrimSpace(req.Name),
		Unit:      req.Unit,
		Opening:   ledger.ParseAmount(req.Opening),
		Purchased: ledger.ParseAmount(req.Purchased),
		Wastage:   ledger.ParseAmount(req.Wastage),
		Sold:      ledger.ParseAmount(req.Sold),
	})
	if err != nil {
		return domain.InventoryItemView{}, err
	}
	return domain.NewInventoryItemView(*item), nil
}

func (s *Service) UpdateInventoryItem(ctx context.Context, shopName string, id string, req domain.InventoryUpdateRequest) (domain.InventoryItemView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.InventoryItemView{}, fmt.Errorf("admin role required")
	}
	if !domain.IsShop(shopName) {
		return domain.InventoryItemView{}, fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}

	item, err := s.repo.GetInventoryItem(ctx, shopName, id)
	if err != nil {
		return domain.InventoryItemView{}, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		if !domain.IsUnit(*req.Unit) {
			return domain.InventoryItemView{}, fmt.Errorf("%w: unknown unit %q", store.ErrInvalidRecord, *req.Unit)
		}
		item.Unit = *req.Unit
	}
	if req.Opening != nil {
		item.Opening = ledger.ParseAmount(*req.Opening)
	}
	if req.Purchased != nil {
		item.Purchased = ledger.ParseAmount(*req.Purchased)
	}
	if req.Wastage != nil {
		item.Wastage = ledger.ParseAmount(*req.Wastage)
	}
	if req.Sold != nil {
		item.Sold = ledger.ParseAmount(*req.Sold)
	}
	if item.Name == "" {
		return domain.InventoryItemView{}, fmt.Errorf("%w: item name is required", store.ErrInvalidRecord)
	}

	updated, err := s.repo.UpdateInventoryItem(ctx, *item)
	if err != nil {
		return domain.InventoryItemView{}, err
	}
	return domain.NewInventoryItemView(*updated), nil
}

func (s *Service) DeleteInventoryItem(ctx context.Context, shopName string, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required")
	}
	if !domain.IsShop(shopName) {
		return fmt.Errorf("%w: unknown shop %q", store.ErrInvalidRecord, shopName)
	}
	return s.repo.DeleteInventoryItem(ctx, shopName, id)
}
