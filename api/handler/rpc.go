package handler

import (
	"context"
	"docuflow/api/middleware"
	"docuflow/api/response"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type processRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
}

// ProcessDocument 同步执行一次提取，兼容 functions/v1/process-document
func (h *Handler) ProcessDocument(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RPCError(c, http.StatusBadRequest, errors.New("documentId is required"))
		return
	}

	ctx := c.Request.Context()
	// 先校验归属，worker 本身不区分用户
	if _, err := h.docs.Get(ctx, middleware.OwnerID(c), req.DocumentID); err != nil {
		response.RPCError(c, rpcStatus(err), err)
		return
	}

	if h.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.taskTimeout)
		defer cancel()
	}
	draft, err := h.worker.Process(ctx, req.DocumentID)
	if err != nil {
		response.RPCError(c, rpcStatus(err), err)
		return
	}
	response.RPCSuccess(c, gin.H{"data": draft})
}

// SendReminders 兼容 functions/v1/send-reminders
func (h *Handler) SendReminders(c *gin.Context) {
	n, err := h.reminders.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		response.RPCError(c, http.StatusInternalServerError, err)
		return
	}
	response.RPCSuccess(c, gin.H{"reminders_sent": n})
}

// rpcStatus 旧接口只区分 400/404/409，其余都算 500
func rpcStatus(err error) int {
	switch s := response.StatusOf(err); s {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		return s
	default:
		return http.StatusInternalServerError
	}
}
