package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/usecase"
)

// ProductHandler catalogue des produits (écriture réservée à l'admin).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construit le handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Créer un produit
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Produit"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtenir un produit
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID du produit"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Lister les produits actifs
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Catégorie"
// @Param        limit     query  int     false  "Limite"  default(20)
// @Param        offset    query  int     false  "Décalage"  default(0)
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ProductListRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	page, e := pageFromQuery(c)
	if e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.List(c.UserContext(), in, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateReferencePrices godoc
// @Summary      Mettre à jour les prix de référence
// @Description  Déclenche l'invalidation des instantanés d'analyse du produit.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true  "ID du produit"
// @Param        body  body  dto.UpdateReferencePricesRequest  true  "Prix (FCFA)"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reference-prices [put]
func (h *ProductHandler) UpdateReferencePrices(c *fiber.Ctx) error {
	var in dto.UpdateReferencePricesRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.UpdateReferencePrices(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Retirer un produit du catalogue
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID du produit"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ZoneHandler zones de livraison.
type ZoneHandler struct {
	uc *usecase.ZoneUseCase
}

// NewZoneHandler construit le handler.
func NewZoneHandler(uc *usecase.ZoneUseCase) *ZoneHandler {
	return &ZoneHandler{uc: uc}
}

// Create godoc
// @Summary      Créer une zone
// @Tags         zones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateZoneRequest  true  "Zone"
// @Success      201   {object}  dto.ZoneResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/zones [post]
func (h *ZoneHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateZoneRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Lister les zones
// @Tags         zones
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "Inclure les zones inactives"
// @Success      200  {array}  dto.ZoneResponse
// @Router       /api/zones [get]
func (h *ZoneHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
