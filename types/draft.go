package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LineItem is one row of an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// InvoiceDraft 模型从发票中提取出的草稿数据（不含供应商信息）
type InvoiceDraft struct {
	InvoiceNumber   *string    `json:"invoice_number"`
	InvoiceDate     *string    `json:"invoice_date"`
	DueDate         *string    `json:"due_date"`
	TotalAmount     *float64   `json:"total_amount"`
	TaxAmount       *float64   `json:"tax_amount"`
	Items           []LineItem `json:"items"`
	SummaryText     string     `json:"summary_text"`
	ConfidenceScore float64    `json:"confidence_score"`
}

// ContractDraft 模型从合同中提取出的草稿数据
type ContractDraft struct {
	Parties         []string `json:"parties"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
	PaymentAmount   *float64 `json:"payment_amount"`
	SummaryText     string   `json:"summary_text"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// Draft is the extracted payload of a document, tagged by its declared type.
// Exactly one of Invoice / Contract is set, matching Type.
type Draft struct {
	Type     DocumentType
	Invoice  *InvoiceDraft
	Contract *ContractDraft
}

func (d Draft) MarshalJSON() ([]byte, error) {
	switch d.Type {
	case DocumentTypeInvoice:
		return json.Marshal(d.Invoice)
	case DocumentTypeContract:
		return json.Marshal(d.Contract)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, d.Type)
	}
}

func (d Draft) SummaryText() string {
	if d.Invoice != nil {
		return d.Invoice.SummaryText
	}
	if d.Contract != nil {
		return d.Contract.SummaryText
	}
	return ""
}

func (d Draft) ConfidenceScore() float64 {
	if d.Invoice != nil {
		return d.Invoice.ConfidenceScore
	}
	if d.Contract != nil {
		return d.Contract.ConfidenceScore
	}
	return 0
}

// DecodeDraft validates a raw JSON object against the schema of docType and
// returns the typed draft. summary_text and confidence_score are required and
// confidence_score must lie in [0,1].
func DecodeDraft(docType DocumentType, raw []byte) (Draft, error) {
	switch docType {
	case DocumentTypeInvoice:
		var in rawInvoice
		if err := json.Unmarshal(raw, &in); err != nil {
			return Draft{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		conf, err := checkRequired(in.SummaryText, in.ConfidenceScore)
		if err != nil {
			return Draft{}, err
		}
		out := &InvoiceDraft{
			InvoiceNumber:   in.InvoiceNumber.ptr(),
			InvoiceDate:     in.InvoiceDate.ptr(),
			DueDate:         in.DueDate.ptr(),
			TotalAmount:     in.TotalAmount.ptr(),
			TaxAmount:       in.TaxAmount.ptr(),
			Items:           make([]LineItem, 0, len(in.Items)),
			SummaryText:     in.SummaryText.Value,
			ConfidenceScore: conf,
		}
		for _, it := range in.Items {
			out.Items = append(out.Items, LineItem{
				Description: it.Description.Value,
				Quantity:    it.Quantity.Value,
				UnitPrice:   it.UnitPrice.Value,
				Amount:      it.Amount.Value,
			})
		}
		return Draft{Type: DocumentTypeInvoice, Invoice: out}, nil

	case DocumentTypeContract:
		var in rawContract
		if err := json.Unmarshal(raw, &in); err != nil {
			return Draft{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		conf, err := checkRequired(in.SummaryText, in.ConfidenceScore)
		if err != nil {
			return Draft{}, err
		}
		out := &ContractDraft{
			Parties:         make([]string, 0, len(in.Parties)),
			StartDate:       in.StartDate.ptr(),
			EndDate:         in.EndDate.ptr(),
			PaymentAmount:   in.PaymentAmount.ptr(),
			SummaryText:     in.SummaryText.Value,
			ConfidenceScore: conf,
		}
		for _, p := range in.Parties {
			if p.Value != "" {
				out.Parties = append(out.Parties, p.Value)
			}
		}
		return Draft{Type: DocumentTypeContract, Contract: out}, nil

	default:
		return Draft{}, fmt.Errorf("%w: %q", ErrUnsupportedType, docType)
	}
}

func checkRequired(summary looseString, conf looseNumber) (float64, error) {
	if !summary.Set {
		return 0, fmt.Errorf("%w: summary_text is required", ErrInvalidDraft)
	}
	if !conf.Set {
		return 0, fmt.Errorf("%w: confidence_score is required", ErrInvalidDraft)
	}
	if math.IsNaN(conf.Value) || conf.Value < 0 || conf.Value > 1 {
		return 0, fmt.Errorf("%w: confidence_score %v outside [0,1]", ErrInvalidDraft, conf.Value)
	}
	return conf.Value, nil
}

// --- 模型原始输出：字段类型不可信，字符串/数字都要兼容 ---

type rawInvoice struct {
	InvoiceNumber   looseString   `json:"invoice_number"`
	InvoiceDate     looseString   `json:"invoice_date"`
	DueDate         looseString   `json:"due_date"`
	TotalAmount     looseNumber   `json:"total_amount"`
	TaxAmount       looseNumber   `json:"tax_amount"`
	Items           []rawLineItem `json:"items"`
	SummaryText     looseString   `json:"summary_text"`
	ConfidenceScore looseNumber   `json:"confidence_score"`
}

type rawLineItem struct {
	Description looseString `json:"description"`
	Quantity    looseNumber `json:"quantity"`
	UnitPrice   looseNumber `json:"unit_price"`
	Amount      looseNumber `json:"amount"`
}

type rawContract struct {
	Parties         []looseString `json:"parties"`
	StartDate       looseString   `json:"start_date"`
	EndDate         looseString   `json:"end_date"`
	PaymentAmount   looseNumber   `json:"payment_amount"`
	SummaryText     looseString   `json:"summary_text"`
	ConfidenceScore looseNumber   `json:"confidence_score"`
}

type looseString struct {
	Value string
	Set   bool
}

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		s.Value, s.Set = strings.TrimSpace(str), true
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		s.Value, s.Set = num.String(), true
		return nil
	}
	return fmt.Errorf("expected string, got %s", b)
}

// ptr 空字符串视为缺失
func (s looseString) ptr() *string {
	if !s.Set || s.Value == "" {
		return nil
	}
	v := s.Value
	return &v
}

type looseNumber struct {
	Value float64
	Set   bool
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value, n.Set = f, true
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	// LLM 可能返回 "1,000.00" 或 "$150"
	clean := strings.NewReplacer(",", "", "$", "", " ", "").Replace(str)
	if clean == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(clean, 64); err == nil {
		n.Value, n.Set = v, true
	}
	return nil
}

func (n looseNumber) ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}
