package handler

import (
	"docuflow/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler 聚合所有接口依赖的 service
type Handler struct {
	docs      *service.DocumentService
	review    *service.ReviewService
	poller    *service.Poller
	worker    service.Processor
	reminders *service.ReminderService
	vendors   *service.VendorService
	records   *service.RecordService
	alerts    *service.AlertService
	dashboard *service.DashboardService

	maxUpload   int64
	taskTimeout time.Duration
}

type Deps struct {
	Documents *service.DocumentService
	Review    *service.ReviewService
	Poller    *service.Poller
	Worker    service.Processor
	Reminders *service.ReminderService
	Vendors   *service.VendorService
	Records   *service.RecordService
	Alerts    *service.AlertService
	Dashboard *service.DashboardService
	// 上传大小上限（字节）
	MaxUpload int64

	// process-document 同步执行的超时，和后台任务一致
	TaskTimeout time.Duration
}

// 构造函数：依赖注入
func NewHandler(d Deps) *Handler {
	if d.MaxUpload <= 0 {
		d.MaxUpload = 20 << 20
	}
	return &Handler{
		docs:      d.Documents,
		review:    d.Review,
		poller:    d.Poller,
		worker:    d.Worker,
		reminders: d.Reminders,
		vendors:   d.Vendors,
		records:   d.Records,
		alerts:    d.Alerts,
		dashboard: d.Dashboard,

		maxUpload:   d.MaxUpload,
		taskTimeout: d.TaskTimeout,
	}
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
