package types

// SearchRequest 全文检索请求
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	// 可选：invoice / contract，空表示全部
	Type  string `json:"type"`
	Limit int    `json:"limit"`
}

// SearchHit is one committed record matched by the search index.
type SearchHit struct {
	RecordID   string       `json:"record_id"`
	Type       DocumentType `json:"type"`
	DocumentID string       `json:"document_id,omitempty"`
	VendorName string       `json:"vendor_name,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Score      float64      `json:"score"`
}

// DashboardStats 首页统计卡片
type DashboardStats struct {
	TotalInvoices   int64 `json:"total_invoices"`
	PendingPayments int64 `json:"pending_payments"`
	TotalVendors    int64 `json:"total_vendors"`
	DueSoon         int64 `json:"due_soon"`
}

type VendorSpend struct {
	VendorName string  `json:"vendor_name"`
	Total      float64 `json:"total"`
}

type MonthlySpend struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

type Analytics struct {
	ByVendor []VendorSpend  `json:"by_vendor"`
	ByMonth  []MonthlySpend `json:"by_month"`
}
