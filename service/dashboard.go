package service

import (
	"context"
	"docuflow/storage/postgres"
	"docuflow/types"
	"docuflow/vars"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSearchDisabled is returned when Elasticsearch is not configured.
var ErrSearchDisabled = errors.New("search is not enabled")

type DashboardService struct {
	store *postgres.Store
	index RecordIndex
}

func NewDashboardService(store *postgres.Store, index RecordIndex) *DashboardService {
	return &DashboardService{store: store, index: index}
}

// Stats 首页统计，四个计数并发查询
func (s *DashboardService) Stats(ctx context.Context, ownerID string, now time.Time) (*types.DashboardStats, error) {
	var stats types.DashboardStats
	today := postgres.DateOnly(now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalInvoices, err = s.store.Invoices.Count(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingPayments, err = s.store.Invoices.CountByPaymentStatus(gctx, ownerID, types.PaymentPending)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalVendors, err = s.store.Vendors.Count(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		stats.DueSoon, err = s.store.Invoices.CountDueBetween(gctx, ownerID, today, today.AddDate(0, 0, vars.DueSoonDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analytics groups invoice totals by vendor and by invoice month (YYYY-MM).
// Invoices without a total are skipped; those without a date only count per vendor.
func (s *DashboardService) Analytics(ctx context.Context, ownerID string) (*types.Analytics, error) {
	invoices, err := s.store.Invoices.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byVendor := map[string]float64{}
	byMonth := map[string]float64{}
	for i := range invoices {
		inv := &invoices[i]
		if inv.TotalAmount == nil {
			continue
		}
		name := inv.VendorName()
		if name == "" {
			name = vars.UnknownVendor
		}
		byVendor[name] += *inv.TotalAmount
		if inv.InvoiceDate != nil {
			byMonth[inv.InvoiceDate.Format("2006-01")] += *inv.TotalAmount
		}
	}

	out := &types.Analytics{
		ByVendor: make([]types.VendorSpend, 0, len(byVendor)),
		ByMonth:  make([]types.MonthlySpend, 0, len(byMonth)),
	}
	for name, total := range byVendor {
		out.ByVendor = append(out.ByVendor, types.VendorSpend{VendorName: name, Total: total})
	}
	for month, total := range byMonth {
		out.ByMonth = append(out.ByMonth, types.MonthlySpend{Month: month, Total: total})
	}
	// 供应商按金额降序，月份按时间升序
	sort.Slice(out.ByVendor, func(i, j int) bool {
		if out.ByVendor[i].Total != out.ByVendor[j].Total {
			return out.ByVendor[i].Total > out.ByVendor[j].Total
		}
		return out.ByVendor[i].VendorName < out.ByVendor[j].VendorName
	})
	sort.Slice(out.ByMonth, func(i, j int) bool { return out.ByMonth[i].Month < out.ByMonth[j].Month })
	return out, nil
}

// Search 全文检索已提交记录
func (s *DashboardService) Search(ctx context.Context, ownerID string, req types.SearchRequest) ([]types.SearchHit, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, types.ErrInvalidInput
	}
	if req.Type != "" {
		if _, err := types.ParseDocumentType(req.Type); err != nil {
			return nil, err
		}
	}
	return s.index.Search(ctx, ownerID, query, req.Type, req.Limit)
}
