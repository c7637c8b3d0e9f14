package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
)

// PricingHandler écarts, tendances, instantanés et rapport de marché.
type PricingHandler struct {
	variance  *pricing.VarianceUseCase
	trend     *pricing.TrendUseCase
	analytics *pricing.AnalyticsUseCase
}

// NewPricingHandler construit le handler.
func NewPricingHandler(variance *pricing.VarianceUseCase, trend *pricing.TrendUseCase, analytics *pricing.AnalyticsUseCase) *PricingHandler {
	return &PricingHandler{variance: variance, trend: trend, analytics: analytics}
}

// Variance godoc
// @Summary      Écart des prix fournisseurs au prix de référence
// @Description  Sans prix de référence la réponse porte status "N/A" et aucun agrégat.
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id       path   string  true   "ID du produit"
// @Param        zone_id  query  string  false  "Zone (vide = global)"
// @Param        kind     query  string  false  "unit | crate | consign"  default(unit)
// @Success      200  {object}  dto.ProductVarianceDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pricing/products/{id}/variance [get]
func (h *PricingHandler) Variance(c *fiber.Ctx) error {
	var in dto.VarianceRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.variance.GetProductVariance(c.UserContext(), c.Params("id"), in.ZoneID, in.Kind)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Trend godoc
// @Summary      Tendance journalière des prix livrés
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID du produit"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ProductTrendDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pricing/products/{id}/trend [get]
func (h *PricingHandler) Trend(c *fiber.Ctx) error {
	var in dto.TrendRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.trend.GetProductTrend(c.UserContext(), c.Params("id"), in.StartDate, in.EndDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Analytics godoc
// @Summary      Instantanés d'analyse courants d'un produit
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        id       path   string  true   "ID du produit"
// @Param        zone_id  query  string  false  "Zone (vide = global)"
// @Success      200  {array}  dto.PriceAnalyticsDTO
// @Router       /api/pricing/products/{id}/analytics [get]
func (h *PricingHandler) Analytics(c *fiber.Ctx) error {
	out, err := h.analytics.GetCurrent(c.UserContext(), c.Params("id"), c.Query("zone_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Recompute godoc
// @Summary      Recalculer les instantanés d'un produit
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true   "ID du produit"
// @Param        body  body  dto.RecomputeRequest   false  "Zone et période"
// @Success      200   {object}  dto.RecomputeResultDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pricing/products/{id}/analytics/recompute [post]
func (h *PricingHandler) Recompute(c *fiber.Ctx) error {
	var in dto.RecomputeRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.analytics.Recompute(c.UserContext(), c.Params("id"), in.ZoneID, in.Period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarketReport godoc
// @Summary      Rapport de marché d'une zone
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        zone_id  query  string  false  "Zone (vide = global)"
// @Param        kind     query  string  false  "unit | crate | consign"  default(unit)
// @Success      200  {object}  dto.MarketReportDTO
// @Router       /api/pricing/market-report [get]
func (h *PricingHandler) MarketReport(c *fiber.Ctx) error {
	var in dto.MarketReportRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.analytics.MarketReport(c.UserContext(), in.ZoneID, in.Kind)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
