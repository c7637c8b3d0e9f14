package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/grid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GridHandler grilles de prix du fournisseur connecté (sub du jeton = supplierId).
type GridHandler struct {
	uc *grid.UseCase
}

// NewGridHandler construit le handler.
func NewGridHandler(uc *grid.UseCase) *GridHandler {
	return &GridHandler{uc: uc}
}

// Upsert godoc
// @Summary      Publier une grille de prix
// @Description  La nouvelle grille remplace la grille active du même produit et de la même zone.
// @Tags         grids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertGridRequest  true  "Grille"
// @Success      201   {object}  dto.GridResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/grids [post]
func (h *GridHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertGridRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Upsert(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Lister mes grilles
// @Tags         grids
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "Inclure les grilles inactives"
// @Success      200  {array}  dto.GridResponse
// @Router       /api/grids [get]
func (h *GridHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListBySupplier(c.UserContext(), GetUserID(c), !c.QueryBool("all", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordSale godoc
// @Summary      Imputer une vente sur une grille
// @Description  Une vente au-delà du stock est acceptée et signalée (oversold).
// @Tags         grids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la grille"
// @Param        body  body  dto.RecordSaleRequest  true  "Quantité"
// @Success      200   {object}  dto.GridResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/grids/{id}/sales [post]
func (h *GridHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.RecordSale(c.UserContext(), GetUserID(c), c.Params("id"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ResetSold godoc
// @Summary      Remettre à zéro les ventes d'une grille
// @Tags         grids
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la grille"
// @Param        body  body  dto.ResetSoldRequest  true  "Nouveau stock initial"
// @Success      200   {object}  dto.GridResponse
// @Router       /api/grids/{id}/reset [post]
func (h *GridHandler) ResetSold(c *fiber.Ctx) error {
	var in dto.ResetSoldRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.ResetSold(c.UserContext(), GetUserID(c), c.Params("id"), in.InitialStock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Désactiver une grille
// @Tags         grids
// @Security     Bearer
// @Param        id  path  string  true  "ID de la grille"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/grids/{id} [delete]
func (h *GridHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Template godoc
// @Summary      Télécharger le modèle XLSX des grilles
// @Description  Une ligne par produit actif, préremplie avec mes grilles globales actives.
// @Tags         grids
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/grids/template.xlsx [get]
func (h *GridHandler) Template(c *fiber.Ctx) error {
	data, err := h.uc.ExportTemplate(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="grilles.xlsx"`)
	return c.Send(data)
}

// Import godoc
// @Summary      Importer des grilles depuis un classeur XLSX
// @Description  Les lignes invalides sont signalées; les autres sont importées.
// @Tags         grids
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file           formData  file    true   "Classeur .xlsx"
// @Param        supplier_name  formData  string  false  "Nom affiché du fournisseur"
// @Success      200  {object}  dto.ImportResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/grids/import [post]
func (h *GridHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, &dto.ErrorResponse{Code: "MISSING_FILE", Message: "champ 'file' requis"})
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, &dto.ErrorResponse{Code: "INVALID_FILE", Message: "fichier illisible"})
	}
	defer f.Close()

	out, err := h.uc.Import(c.UserContext(), GetUserID(c), c.FormValue("supplier_name"), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
