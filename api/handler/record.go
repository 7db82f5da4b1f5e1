package handler

import (
	"docuflow/api/middleware"
	"docuflow/api/response"
	"docuflow/types"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListVendors(c *gin.Context) {
	vendors, err := h.vendors.List(c.Request.Context(), middleware.OwnerID(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, vendors)
}

func (h *Handler) GetVendor(c *gin.Context) {
	v, err := h.vendors.Get(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, v)
}

func (h *Handler) CreateVendor(c *gin.Context) {
	var in types.VendorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, "参数错误: name 不能为空")
		return
	}
	v, err := h.vendors.Create(c.Request.Context(), middleware.OwnerID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, v)
}

func (h *Handler) UpdateVendor(c *gin.Context) {
	var in types.VendorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, "参数错误: name 不能为空")
		return
	}
	v, err := h.vendors.Update(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, v)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	recs, err := h.records.ListInvoices(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, recs)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	rec, err := h.records.GetInvoice(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var in types.PaymentStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, "参数错误: payment_status 不能为空")
		return
	}
	rec, err := h.records.UpdatePaymentStatus(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), in.PaymentStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *Handler) ListContracts(c *gin.Context) {
	recs, err := h.records.ListContracts(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, recs)
}

func (h *Handler) GetContract(c *gin.Context) {
	rec, err := h.records.GetContract(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.OwnerID(c)
	alerts, err := h.alerts.List(ctx, owner, queryLimit(c, 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	unread, err := h.alerts.CountUnread(ctx, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"alerts": alerts, "unread": unread})
}

func (h *Handler) MarkAlertRead(c *gin.Context) {
	if err := h.alerts.MarkRead(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id"), "is_read": true})
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), middleware.OwnerID(c), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *Handler) Analytics(c *gin.Context) {
	a, err := h.dashboard.Analytics(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

func (h *Handler) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "参数错误: query 不能为空")
		return
	}
	hits, err := h.dashboard.Search(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, hits)
}

// RunReminders 手动触发一次到期提醒
func (h *Handler) RunReminders(c *gin.Context) {
	n, err := h.reminders.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"reminders_sent": n})
}
