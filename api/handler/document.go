package handler

import (
	"docuflow/api/middleware"
	"docuflow/api/response"
	"docuflow/service"
	"docuflow/types"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type documentStatus struct {
	ID       string               `json:"id"`
	Status   types.DocumentStatus `json:"status"`
	ErrorMsg *string              `json:"error_msg,omitempty"`
}

// Upload 上传单个文件并开始异步提取
func (h *Handler) Upload(c *gin.Context) {
	fileType, err := types.ParseDocumentType(c.PostForm("file_type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, "未接收到文件，请检查参数名是否为 'file'")
		return
	}
	if fh.Size > h.maxUpload {
		response.FailWithStatus(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxUpload))
		return
	}

	src, err := fh.Open()
	if err != nil {
		response.Fail(c, "文件读取失败")
		return
	}
	defer src.Close()

	doc, task, err := h.docs.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:  middleware.OwnerID(c),
		FileName: fh.Filename,
		FileType: fileType,
		Size:     fh.Size,
		Body:     src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"document": doc,
		"task_id":  task.ID,
	})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.docs.ListRecent(c.Request.Context(), middleware.OwnerID(c), queryLimit(c, 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *Handler) DocumentStatus(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, documentStatus{ID: doc.ID, Status: doc.Status, ErrorMsg: doc.ErrorMsg})
}

// WaitDocument 长轮询，直到提取结束或超时
func (h *Handler) WaitDocument(c *gin.Context) {
	doc, err := h.poller.Wait(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, documentStatus{ID: doc.ID, Status: doc.Status, ErrorMsg: doc.ErrorMsg})
}

func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.review.Draft(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"type":  draft.Type,
		"draft": draft,
		"form":  types.CommitRequestFromDraft(draft),
	})
}

func (h *Handler) DownloadURL(c *gin.Context) {
	url, err := h.docs.DownloadURL(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

func (h *Handler) Commit(c *gin.Context) {
	var req types.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "参数错误: "+err.Error())
		return
	}
	res, err := h.review.Commit(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (h *Handler) Cancel(c *gin.Context) {
	if err := h.review.Cancel(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id"), "deleted": true})
}
