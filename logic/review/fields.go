package review

import (
	"docuflow/types"
	"docuflow/vars"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numberCleaner = strings.NewReplacer(",", "", "$", "", " ", "")

// 只取开头的数字部分："12abc" -> 12, "1.5.3" -> 1.5
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

func parseNumber(v types.FormValue) (float64, bool) {
	s := numberPrefix.FindString(numberCleaner.Replace(strings.TrimSpace(v.String())))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Amount 顶层金额：空或无法解析 -> null
func Amount(v types.FormValue) *float64 {
	f, ok := parseNumber(v)
	if !ok {
		return nil
	}
	return &f
}

// ItemNumber 明细里的数量/单价/金额：空或无法解析 -> 0
// 与顶层金额的处理不同，保持和历史数据一致
func ItemNumber(v types.FormValue) float64 {
	f, _ := parseNumber(v)
	return f
}

// Date parses a YYYY-MM-DD field. Blank means null; anything else that does
// not parse is rejected.
func Date(field string, v types.FormValue) (*time.Time, error) {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(vars.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", types.ErrInvalidDate, field, s)
	}
	return &t, nil
}

// Text 空串 -> null
func Text(v types.FormValue) *string {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return nil
	}
	return &s
}

func LineItems(in []types.LineItemInput) []types.LineItem {
	items := make([]types.LineItem, 0, len(in))
	for _, it := range in {
		items = append(items, types.LineItem{
			Description: strings.TrimSpace(it.Description.String()),
			Quantity:    ItemNumber(it.Quantity),
			UnitPrice:   ItemNumber(it.UnitPrice),
			Amount:      ItemNumber(it.Amount),
		})
	}
	return items
}

// Parties trims names and drops blanks.
func Parties(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InvoiceFields is the reviewed invoice after coercion, ready to persist.
type InvoiceFields struct {
	InvoiceNumber *string
	InvoiceDate   *time.Time
	DueDate       *time.Time
	TotalAmount   *float64
	TaxAmount     *float64
	Items         []types.LineItem
	SummaryText   *string
}

type ContractFields struct {
	Parties       []string
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentAmount *float64
	SummaryText   *string
}

// Invoice 校验并转换发票表单；日期非法时整体拒绝
func Invoice(req types.CommitRequest) (InvoiceFields, error) {
	invoiceDate, err := Date("invoice_date", req.InvoiceDate)
	if err != nil {
		return InvoiceFields{}, err
	}
	dueDate, err := Date("due_date", req.DueDate)
	if err != nil {
		return InvoiceFields{}, err
	}
	return InvoiceFields{
		InvoiceNumber: Text(req.InvoiceNumber),
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		TotalAmount:   Amount(req.TotalAmount),
		TaxAmount:     Amount(req.TaxAmount),
		Items:         LineItems(req.Items),
		SummaryText:   Text(req.SummaryText),
	}, nil
}

func Contract(req types.CommitRequest) (ContractFields, error) {
	start, err := Date("start_date", req.StartDate)
	if err != nil {
		return ContractFields{}, err
	}
	end, err := Date("end_date", req.EndDate)
	if err != nil {
		return ContractFields{}, err
	}
	return ContractFields{
		Parties:       Parties(req.Parties),
		StartDate:     start,
		EndDate:       end,
		PaymentAmount: Amount(req.PaymentAmount),
		SummaryText:   Text(req.SummaryText),
	}, nil
}
