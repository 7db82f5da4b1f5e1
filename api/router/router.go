package router

import (
	"docuflow/api/handler"
	"docuflow/api/middleware"
	"docuflow/pkg/metrics"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Config struct {
	JWTSecret string
	Logger    *zap.Logger
}

// New 构建 gin engine：公共中间件 + 路由
func New(cfg Config, h *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey", "X-Request-ID"},
			ExposeHeaders:   []string{"X-Request-ID"},
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	RegisterRoutes(r, h, middleware.Auth(cfg.JWTSecret))
	return r
}

func RegisterRoutes(r *gin.Engine, h *handler.Handler, auth gin.HandlerFunc) {
	functions := r.Group("/functions/v1", auth)
	{
		functions.POST("/process-document", h.ProcessDocument)
		functions.POST("/send-reminders", h.SendReminders)
	}

	api := r.Group("/api/v1", auth)
	{
		documents := api.Group("/documents")
		{
			documents.POST("", h.Upload)
			documents.GET("", h.ListDocuments)
			documents.GET("/:id", h.GetDocument)
			documents.GET("/:id/status", h.DocumentStatus)
			documents.GET("/:id/wait", h.WaitDocument)
			documents.GET("/:id/draft", h.GetDraft)
			documents.GET("/:id/download", h.DownloadURL)
			documents.POST("/:id/commit", h.Commit)
			documents.POST("/:id/cancel", h.Cancel)
		}
		vendors := api.Group("/vendors")
		{
			vendors.GET("", h.ListVendors)
			vendors.POST("", h.CreateVendor)
			vendors.GET("/:id", h.GetVendor)
			vendors.PUT("/:id", h.UpdateVendor)
		}
		invoices := api.Group("/invoices")
		{
			invoices.GET("", h.ListInvoices)
			invoices.GET("/:id", h.GetInvoice)
			invoices.PATCH("/:id/payment-status", h.UpdatePaymentStatus)
		}
		contracts := api.Group("/contracts")
		{
			contracts.GET("", h.ListContracts)
			contracts.GET("/:id", h.GetContract)
		}
		alerts := api.Group("/alerts")
		{
			alerts.GET("", h.ListAlerts)
			alerts.POST("/:id/read", h.MarkAlertRead)
		}
		api.GET("/dashboard", h.Dashboard)
		api.GET("/analytics", h.Analytics)
		api.POST("/search", h.Search)
		api.POST("/reminders/run", h.RunReminders)
	}
}
