package extract

import (
	"docuflow/types"
	"docuflow/vars"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// 供应商字段不在 schema 里：由用户在审核时选择或新建

func invoiceParams() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"invoice_number": {Type: schema.String, Desc: "Invoice number as printed"},
		"invoice_date":   {Type: schema.String, Desc: "Invoice date, YYYY-MM-DD"},
		"due_date":       {Type: schema.String, Desc: "Payment due date, YYYY-MM-DD"},
		"total_amount":   {Type: schema.Number, Desc: "Total amount including tax"},
		"tax_amount":     {Type: schema.Number, Desc: "Tax amount"},
		"items": {
			Type: schema.Array,
			Desc: "Line items",
			ElemInfo: &schema.ParameterInfo{
				Type: schema.Object,
				SubParams: map[string]*schema.ParameterInfo{
					"description": {Type: schema.String, Required: true},
					"quantity":    {Type: schema.Number},
					"unit_price":  {Type: schema.Number},
					"amount":      {Type: schema.Number},
				},
			},
		},
		"summary_text":     {Type: schema.String, Desc: "Brief summary of the invoice", Required: true},
		"confidence_score": {Type: schema.Number, Desc: "Extraction confidence between 0 and 1", Required: true},
	}
}

func contractParams() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"parties": {
			Type:     schema.Array,
			Desc:     "Full names of the contracting parties",
			ElemInfo: &schema.ParameterInfo{Type: schema.String},
		},
		"start_date":       {Type: schema.String, Desc: "Start date, YYYY-MM-DD"},
		"end_date":         {Type: schema.String, Desc: "End date, YYYY-MM-DD"},
		"payment_amount":   {Type: schema.Number, Desc: "Payment amount"},
		"summary_text":     {Type: schema.String, Desc: "Brief summary of the contract", Required: true},
		"confidence_score": {Type: schema.Number, Desc: "Extraction confidence between 0 and 1", Required: true},
	}
}

// ToolFor returns the single extraction tool for a document type.
func ToolFor(t types.DocumentType) (*schema.ToolInfo, error) {
	var params map[string]*schema.ParameterInfo
	switch t {
	case types.DocumentTypeInvoice:
		params = invoiceParams()
	case types.DocumentTypeContract:
		params = contractParams()
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedType, t)
	}
	return &schema.ToolInfo{
		Name:        vars.ExtractToolName,
		Desc:        vars.ExtractToolDesc,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func promptFor(t types.DocumentType) string {
	if t == types.DocumentTypeContract {
		return vars.ContractPrompt
	}
	return vars.InvoicePrompt
}

// MIMEType 按扩展名判断；未知一律按 jpeg 处理
func MIMEType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
