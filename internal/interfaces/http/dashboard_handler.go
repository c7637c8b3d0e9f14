package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/ravito-ci/ravito-api/internal/application/analytics"
)

// DashboardHandler tableau de bord des prix (admin).
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construit le handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetPricingSummary renvoie les compteurs du catalogue et les 5 plus forts écarts.
// GET /api/dashboard/pricing
//
// Réponse: PricingDashboardDTO (active_products, products_without_reference,
// active_grids, oversold_grids, top_variances[5]). Aucun paramètre.
func (h *DashboardHandler) GetPricingSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetPricingSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
