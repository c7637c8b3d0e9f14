package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/ravito-ci/ravito-api/internal/application/analytics"
	"github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/grid"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
	"github.com/ravito-ci/ravito-api/internal/application/usecase"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/pkg/jwt"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

// RouterDeps dépendances du routeur.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	ZoneUC      *usecase.ZoneUseCase
	ModuleSvc   *usecase.ModuleService
	VarianceUC  *pricing.VarianceUseCase
	TrendUC     *pricing.TrendUseCase
	AnalyticsUC *pricing.AnalyticsUseCase
	DashboardUC *appanalytics.DashboardUseCase
	GridUC      *grid.UseCase
	CreditUC    *credit.UseCase
	JWTSecret   string
	JWTIssuer   string
	Location    *time.Location
	Log         *logger.Logger
}

// Router enregistre les routes /api. Toutes exigent un Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	adminOnly := RequireRole(jwt.RoleAdmin)
	pricingRoles := RequireRole(jwt.RoleAdmin, jwt.RoleSupplier)

	// Catalogue: lecture pour tous, écriture admin
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id/reference-prices", adminOnly, productHandler.UpdateReferencePrices)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)

	zoneHandler := NewZoneHandler(deps.ZoneUC)
	zones := api.Group("/zones")
	zones.Post("/", adminOnly, zoneHandler.Create)
	zones.Get("/", zoneHandler.List)

	// Prix
	pricingHandler := NewPricingHandler(deps.VarianceUC, deps.TrendUC, deps.AnalyticsUC)
	pr := api.Group("/pricing", pricingRoles)
	pr.Get("/products/:id/variance", pricingHandler.Variance)
	pr.Get("/products/:id/trend", pricingHandler.Trend)
	pr.Get("/products/:id/analytics", pricingHandler.Analytics)
	pr.Post("/products/:id/analytics/recompute", adminOnly, pricingHandler.Recompute)
	pr.Get("/market-report", pricingHandler.MarketReport)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/pricing", adminOnly, dashboardHandler.GetPricingSummary)

	// Grilles fournisseur
	gridHandler := NewGridHandler(deps.GridUC)
	grids := api.Group("/grids", RequireRole(jwt.RoleSupplier))
	grids.Get("/template.xlsx", gridHandler.Template)
	grids.Post("/import", gridHandler.Import)
	grids.Post("/", gridHandler.Upsert)
	grids.Get("/", gridHandler.List)
	grids.Post("/:id/sales", gridHandler.RecordSale)
	grids.Post("/:id/reset", gridHandler.ResetSold)
	grids.Delete("/:id", gridHandler.Deactivate)

	// Carnet de crédit
	creditHandler := NewCreditHandler(deps.CreditUC, deps.Location)
	cr := api.Group("/credit",
		RequireRole(jwt.RoleClient),
		RequireModule(entity.ModuleCreditBook, deps.ModuleSvc, deps.Log),
	)
	cr.Get("/alerts", creditHandler.Alerts)
	cr.Get("/summary", creditHandler.Summary)
	cr.Post("/customers", creditHandler.CreateCustomer)
	cr.Get("/customers", creditHandler.ListCustomers)
	cr.Get("/customers/:id", creditHandler.GetCustomer)
	cr.Put("/customers/:id", creditHandler.UpdateCustomer)
	cr.Delete("/customers/:id", creditHandler.DeleteCustomer)
	cr.Post("/customers/:id/consumptions", creditHandler.RecordConsumption)
	cr.Post("/customers/:id/payments", creditHandler.RecordPayment)
	cr.Get("/customers/:id/transactions", creditHandler.ListTransactions)
	cr.Post("/customers/:id/freeze", creditHandler.Freeze)
	cr.Post("/customers/:id/unfreeze", creditHandler.Unfreeze)
	cr.Post("/customers/:id/disable", creditHandler.Disable)
	cr.Post("/customers/:id/reactivate", creditHandler.Reactivate)
	cr.Get("/customers/:id/reconcile", creditHandler.Reconcile)
	cr.Get("/customers/:id/statement.pdf", creditHandler.Statement)
}
