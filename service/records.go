package service

import (
	"context"
	"docuflow/storage/postgres"
	"docuflow/types"
	"fmt"
	"strings"
)

type VendorService struct {
	store *postgres.Store
}

func NewVendorService(store *postgres.Store) *VendorService {
	return &VendorService{store: store}
}

func (s *VendorService) List(ctx context.Context, ownerID, q string) ([]postgres.Vendor, error) {
	return s.store.Vendors.List(ctx, ownerID, q)
}

func (s *VendorService) Get(ctx context.Context, ownerID, id string) (*postgres.Vendor, error) {
	return s.store.Vendors.Get(ctx, ownerID, id)
}

// Create 同名供应商不去重
func (s *VendorService) Create(ctx context.Context, ownerID string, in types.VendorInput) (*postgres.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: vendor name is required", types.ErrInvalidInput)
	}
	v := &postgres.Vendor{
		UserID:  ownerID,
		Name:    name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := s.store.Vendors.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VendorService) Update(ctx context.Context, ownerID, id string, in types.VendorInput) (*postgres.Vendor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: vendor name is required", types.ErrInvalidInput)
	}
	return s.store.Vendors.Update(ctx, ownerID, id, in)
}

// RecordService 已提交的发票和合同
type RecordService struct {
	store *postgres.Store
}

func NewRecordService(store *postgres.Store) *RecordService {
	return &RecordService{store: store}
}

func (s *RecordService) ListInvoices(ctx context.Context, ownerID string) ([]postgres.InvoiceRecord, error) {
	return s.store.Invoices.List(ctx, ownerID)
}

func (s *RecordService) GetInvoice(ctx context.Context, ownerID, id string) (*postgres.InvoiceRecord, error) {
	return s.store.Invoices.Get(ctx, ownerID, id)
}

func (s *RecordService) UpdatePaymentStatus(ctx context.Context, ownerID, id, status string) (*postgres.InvoiceRecord, error) {
	if !types.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: payment_status %q", types.ErrInvalidInput, status)
	}
	if err := s.store.Invoices.UpdatePaymentStatus(ctx, ownerID, id, status); err != nil {
		return nil, err
	}
	return s.store.Invoices.Get(ctx, ownerID, id)
}

func (s *RecordService) ListContracts(ctx context.Context, ownerID string) ([]postgres.ContractRecord, error) {
	return s.store.Contracts.List(ctx, ownerID)
}

func (s *RecordService) GetContract(ctx context.Context, ownerID, id string) (*postgres.ContractRecord, error) {
	return s.store.Contracts.Get(ctx, ownerID, id)
}

type AlertService struct {
	store *postgres.Store
}

func NewAlertService(store *postgres.Store) *AlertService {
	return &AlertService{store: store}
}

func (s *AlertService) List(ctx context.Context, ownerID string, limit int) ([]postgres.Alert, error) {
	return s.store.Alerts.List(ctx, ownerID, limit)
}

func (s *AlertService) MarkRead(ctx context.Context, ownerID, id string) error {
	return s.store.Alerts.MarkRead(ctx, ownerID, id)
}

func (s *AlertService) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	return s.store.Alerts.CountUnread(ctx, ownerID)
}
