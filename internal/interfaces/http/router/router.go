package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/condoledger/backend/internal/infrastructure/auth"
	"github.com/condoledger/backend/internal/infrastructure/config"
	"github.com/condoledger/backend/internal/infrastructure/logger"
	"github.com/condoledger/backend/internal/interfaces/http/handler"
	"github.com/condoledger/backend/internal/interfaces/http/middleware"
)

// Dependencies carries everything the router needs to wire routes.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService

	BillingHandler  *handler.BillingHandler
	SupplierHandler *handler.SupplierHandler
	SystemHandler   *handler.SystemHandler
}

// New builds the gin engine with all middleware and routes wired.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(deps.Config.HTTP))
	engine.Use(middleware.Secure())
	engine.Use(logger.GinMiddleware(deps.Logger, "/health", "/ready"))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.JWTAuth(middleware.JWTAuthConfig{
		Service: deps.JWTService,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}))

	engine.GET("/health", deps.SystemHandler.Health)
	engine.GET("/ready", deps.SystemHandler.Ready)

	v1 := engine.Group("/api/v1")
	{
		billing := deps.BillingHandler

		v1.POST("/condominiums/:id/receipts/generate", billing.GenerateReceipts)

		receipts := v1.Group("/receipts")
		{
			receipts.GET("", billing.ListReceipts)
			receipts.POST("/sweep-overdue", billing.SweepOverdue)
			receipts.GET("/:id", billing.GetReceipt)
			receipts.POST("/:id/annul", billing.AnnulReceipt)
			receipts.PATCH("/:id/visibility", billing.SetReceiptVisibility)
			receipts.POST("/:id/payments", billing.ReportPayment)
		}

		payments := v1.Group("/payments")
		{
			payments.GET("", billing.ListPayments)
			payments.GET("/:id", billing.GetPayment)
			payments.POST("/:id/confirm", billing.ConfirmPayment)
			payments.POST("/:id/reject", billing.RejectPayment)
		}

		users := v1.Group("/users")
		{
			users.GET("/:id/account", billing.GetAccount)
			users.POST("/:id/credit/settle", billing.SettleCredit)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", billing.BookExpense)
			expenses.GET("", billing.ListExpenses)
			expenses.DELETE("/:id", billing.RemoveExpense)
		}

		invoices := v1.Group("/invoices")
		{
			supplier := deps.SupplierHandler
			invoices.POST("", supplier.RegisterInvoice)
			invoices.GET("", supplier.ListInvoices)
			invoices.GET("/:id", supplier.GetInvoice)
			invoices.POST("/:id/payments", supplier.PayInvoice)
			invoices.POST("/:id/cancel", supplier.CancelInvoice)
		}
	}

	return engine
}
