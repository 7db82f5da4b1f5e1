package service

import (
	"context"
	"docuflow/logic/review"
	"docuflow/pkg/metrics"
	"docuflow/storage/es"
	"docuflow/storage/postgres"
	"docuflow/types"
	"docuflow/vars"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CommitResult 提交后生成的记录，只会有 Invoice 或 Contract 之一
type CommitResult struct {
	DocumentID string                   `json:"document_id"`
	Type       types.DocumentType       `json:"type"`
	RecordID   string                   `json:"record_id"`
	VendorID   string                   `json:"vendor_id"`
	Invoice    *postgres.InvoiceRecord  `json:"invoice,omitempty"`
	Contract   *postgres.ContractRecord `json:"contract,omitempty"`
}

type ReviewService struct {
	store   *postgres.Store
	objects ObjectStore
	index   RecordIndex
	log     *zap.Logger
}

// NewReviewService index may be nil when search is disabled.
func NewReviewService(store *postgres.Store, objects ObjectStore, index RecordIndex, log *zap.Logger) *ReviewService {
	return &ReviewService{store: store, objects: objects, index: index, log: log.Named("review")}
}

// Draft returns the extracted draft of a ready document for the review form.
func (s *ReviewService) Draft(ctx context.Context, ownerID, documentID string) (types.Draft, error) {
	doc, err := s.readyDocument(ctx, ownerID, documentID)
	if err != nil {
		return types.Draft{}, err
	}
	return doc.Draft()
}

// Commit persists the reviewed fields. Vendor creation, the record insert and
// ready -> saved happen in one transaction.
func (s *ReviewService) Commit(ctx context.Context, ownerID, documentID string, req types.CommitRequest) (*CommitResult, error) {
	doc, err := s.readyDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	vendorID := ""
	if req.VendorID != nil {
		vendorID = strings.TrimSpace(*req.VendorID)
	}
	vendorName := strings.TrimSpace(req.VendorName)
	if vendorID == "" && vendorName == "" {
		return nil, types.ErrVendorRequired
	}

	// 置信度沿用模型给出的值，不接受表单覆盖
	var confidence *float64
	if draft, err := doc.Draft(); err == nil {
		c := draft.ConfidenceScore()
		confidence = &c
	}

	result := &CommitResult{DocumentID: doc.ID, Type: doc.FileType}
	switch doc.FileType {
	case types.DocumentTypeInvoice:
		f, err := review.Invoice(req)
		if err != nil {
			return nil, err
		}
		result.Invoice = &postgres.InvoiceRecord{
			UserID:          ownerID,
			DocumentID:      &doc.ID,
			InvoiceNumber:   f.InvoiceNumber,
			InvoiceDate:     f.InvoiceDate,
			DueDate:         f.DueDate,
			TotalAmount:     f.TotalAmount,
			TaxAmount:       f.TaxAmount,
			Items:           f.Items,
			SummaryText:     f.SummaryText,
			ConfidenceScore: confidence,
		}
	case types.DocumentTypeContract:
		f, err := review.Contract(req)
		if err != nil {
			return nil, err
		}
		result.Contract = &postgres.ContractRecord{
			UserID:          ownerID,
			DocumentID:      &doc.ID,
			Parties:         f.Parties,
			StartDate:       f.StartDate,
			EndDate:         f.EndDate,
			PaymentAmount:   f.PaymentAmount,
			SummaryText:     f.SummaryText,
			ConfidenceScore: confidence,
		}
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedType, doc.FileType)
	}

	var vendor *postgres.Vendor
	err = s.store.Transaction(ctx, func(tx *postgres.Store) error {
		if vendorID != "" {
			v, err := tx.Vendors.Get(ctx, ownerID, vendorID)
			if err != nil {
				return fmt.Errorf("%w: vendor %s: %w", types.ErrVendorRequired, vendorID, err)
			}
			vendor = v
		} else {
			vendor = &postgres.Vendor{UserID: ownerID, Name: vendorName}
			if err := tx.Vendors.Create(ctx, vendor); err != nil {
				return fmt.Errorf("create vendor: %w", err)
			}
		}

		if result.Invoice != nil {
			result.Invoice.VendorID = &vendor.ID
			if err := tx.Invoices.Create(ctx, result.Invoice); err != nil {
				return fmt.Errorf("create invoice record: %w", err)
			}
			result.RecordID = result.Invoice.ID
		} else {
			result.Contract.VendorID = &vendor.ID
			if err := tx.Contracts.Create(ctx, result.Contract); err != nil {
				return fmt.Errorf("create contract record: %w", err)
			}
			result.RecordID = result.Contract.ID
		}

		return tx.Documents.MarkSaved(ctx, doc.ID)
	})
	if err != nil {
		return nil, err
	}

	result.VendorID = vendor.ID
	if result.Invoice != nil {
		result.Invoice.Vendor = vendor
	} else {
		result.Contract.Vendor = vendor
	}
	metrics.CommitsTotal.WithLabelValues(string(doc.FileType)).Inc()
	s.log.Info("document committed",
		zap.String("document_id", doc.ID),
		zap.String("record_id", result.RecordID),
		zap.String("vendor_id", vendor.ID),
	)

	s.indexRecord(ctx, ownerID, result, vendor.Name)
	return result, nil
}

// Cancel 丢弃草稿：先删文件，再删记录
func (s *ReviewService) Cancel(ctx context.Context, ownerID, documentID string) error {
	doc, err := s.readyDocument(ctx, ownerID, documentID)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, doc.FilePath); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := s.store.Documents.DeleteReady(ctx, ownerID, documentID); err != nil {
		return err
	}
	s.log.Info("document cancelled", zap.String("document_id", documentID))
	return nil
}

func (s *ReviewService) readyDocument(ctx context.Context, ownerID, documentID string) (*postgres.Document, error) {
	doc, err := s.store.Documents.Get(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != types.StatusReady {
		return nil, fmt.Errorf("%w: document is %s, expected %s", types.ErrInvalidTransition, doc.Status, types.StatusReady)
	}
	return doc, nil
}

// indexRecord 写 ES 失败只记日志，不影响提交结果
func (s *ReviewService) indexRecord(ctx context.Context, ownerID string, res *CommitResult, vendorName string) {
	if s.index == nil {
		return
	}
	doc := es.RecordDoc{
		RecordID:   res.RecordID,
		UserID:     ownerID,
		Type:       string(res.Type),
		DocumentID: res.DocumentID,
		VendorName: vendorName,
	}
	var content []string
	if inv := res.Invoice; inv != nil {
		doc.Summary = deref(inv.SummaryText)
		doc.Amount = inv.TotalAmount
		if inv.DueDate != nil {
			doc.Date = inv.DueDate.Format(vars.DateLayout)
		}
		content = append(content, deref(inv.InvoiceNumber))
		for _, it := range inv.Items {
			content = append(content, it.Description)
		}
	} else if c := res.Contract; c != nil {
		doc.Summary = deref(c.SummaryText)
		doc.Amount = c.PaymentAmount
		if c.EndDate != nil {
			doc.Date = c.EndDate.Format(vars.DateLayout)
		}
		content = append(content, c.Parties...)
	}
	doc.Content = strings.TrimSpace(strings.Join(append(content, doc.Summary), "\n"))

	if err := s.index.Index(context.WithoutCancel(ctx), doc); err != nil {
		s.log.Warn("index record failed", zap.String("record_id", res.RecordID), zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
