package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
)

const statementDateLayout = "2006-01-02"

// CreditHandler carnet de crédit de l'organisation du jeton (rôle client, module credit_book).
type CreditHandler struct {
	uc  *credit.UseCase
	loc *time.Location
	now func() time.Time
}

// NewCreditHandler construit le handler. loc sert à interpréter les dates du relevé.
func NewCreditHandler(uc *credit.UseCase, loc *time.Location) *CreditHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CreditHandler{uc: uc, loc: loc, now: time.Now}
}

// ── Clients ──────────────────────────────────────────────────────────────────

// CreateCustomer godoc
// @Summary      Ouvrir un compte client
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCreditCustomerRequest  true  "Client"
// @Success      201   {object}  dto.CreditCustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/customers [post]
func (h *CreditHandler) CreateCustomer(c *fiber.Ctx) error {
	var in dto.CreateCreditCustomerRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.CreateCustomer(c.UserContext(), GetOrganizationID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCustomers godoc
// @Summary      Lister les clients
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active | frozen | disabled"
// @Param        search  query  string  false  "Nom ou téléphone"
// @Param        limit   query  int     false  "Limite"  default(20)
// @Param        offset  query  int     false  "Décalage"  default(0)
// @Success      200  {object}  dto.CreditCustomerListResponse
// @Router       /api/credit/customers [get]
func (h *CreditHandler) ListCustomers(c *fiber.Ctx) error {
	var in dto.CreditCustomerListRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	page, e := pageFromQuery(c)
	if e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.ListCustomers(c.UserContext(), GetOrganizationID(c), in, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetCustomer godoc
// @Summary      Obtenir un client
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID du client"
// @Success      200  {object}  dto.CreditCustomerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id} [get]
func (h *CreditHandler) GetCustomer(c *fiber.Ctx) error {
	out, err := h.uc.GetCustomer(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateCustomer godoc
// @Summary      Modifier les coordonnées d'un client
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID du client"
// @Param        body  body  dto.UpdateCreditCustomerRequest  true  "Champs modifiés"
// @Success      200   {object}  dto.CreditCustomerResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id} [put]
func (h *CreditHandler) UpdateCustomer(c *fiber.Ctx) error {
	var in dto.UpdateCreditCustomerRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.UpdateCustomer(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteCustomer godoc
// @Summary      Supprimer un client (suppression logique)
// @Description  Accepté quel que soit le solde ou le statut; l'historique des transactions est conservé.
// @Tags         credit
// @Security     Bearer
// @Param        id  path  string  true  "ID du client"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id} [delete]
func (h *CreditHandler) DeleteCustomer(c *fiber.Ctx) error {
	if err := h.uc.DeleteCustomer(c.UserContext(), GetOrganizationID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Mouvements ───────────────────────────────────────────────────────────────

// RecordConsumption godoc
// @Summary      Enregistrer une consommation à crédit
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID du client"
// @Param        body  body  dto.RecordConsumptionRequest  true  "Consommation"
// @Success      201   {object}  dto.CreditOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/consumptions [post]
func (h *CreditHandler) RecordConsumption(c *fiber.Ctx) error {
	var in dto.RecordConsumptionRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.RecordConsumption(c.UserContext(), GetOrganizationID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordPayment godoc
// @Summary      Enregistrer un paiement
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID du client"
// @Param        body  body  dto.RecordPaymentRequest  true  "Paiement"
// @Success      201   {object}  dto.CreditOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/payments [post]
func (h *CreditHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), GetOrganizationID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTransactions godoc
// @Summary      Historique des mouvements d'un client
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID du client"
// @Param        limit   query  int     false  "Limite"  default(20)
// @Param        offset  query  int     false  "Décalage"  default(0)
// @Success      200  {array}  dto.CreditTransactionResponse
// @Router       /api/credit/customers/{id}/transactions [get]
func (h *CreditHandler) ListTransactions(c *fiber.Ctx) error {
	page, e := pageFromQuery(c)
	if e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.ListTransactions(c.UserContext(), GetOrganizationID(c), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Statut ───────────────────────────────────────────────────────────────────

// Freeze godoc
// @Summary      Geler un compte
// @Description  freeze_full, reduce_limit (new_limit requis) ou disable.
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID du client"
// @Param        body  body  dto.FreezeRequest  true  "Politique"
// @Success      200   {object}  dto.CreditCustomerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/freeze [post]
func (h *CreditHandler) Freeze(c *fiber.Ctx) error {
	var in dto.FreezeRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Freeze(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Unfreeze godoc
// @Summary      Dégeler un compte
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID du client"
// @Param        body  body  dto.UnfreezeRequest  false  "Nouveau plafond"
// @Success      200   {object}  dto.CreditCustomerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/unfreeze [post]
func (h *CreditHandler) Unfreeze(c *fiber.Ctx) error {
	var in dto.UnfreezeRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Unfreeze(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Disable godoc
// @Summary      Désactiver un compte
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID du client"
// @Param        body  body  dto.DisableRequest  false  "Motif"
// @Success      200   {object}  dto.CreditCustomerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/disable [post]
func (h *CreditHandler) Disable(c *fiber.Ctx) error {
	var in dto.DisableRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Disable(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reactivate godoc
// @Summary      Réactiver un compte désactivé
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID du client"
// @Param        body  body  dto.UnfreezeRequest  false  "Nouveau plafond"
// @Success      200   {object}  dto.CreditCustomerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/reactivate [post]
func (h *CreditHandler) Reactivate(c *fiber.Ctx) error {
	var in dto.UnfreezeRequest
	if e := bindJSON(c, &in); e != nil {
		return badRequest(c, e)
	}
	out, err := h.uc.Reactivate(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Rapports ─────────────────────────────────────────────────────────────────

// Alerts godoc
// @Summary      Clients en retard de paiement
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CreditAlertDTO
// @Router       /api/credit/alerts [get]
func (h *CreditHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.uc.ListAlerts(c.UserContext(), GetOrganizationID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Synthèse du carnet
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CreditSummaryDTO
// @Router       /api/credit/summary [get]
func (h *CreditHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetOrganizationID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Rapprocher le solde stocké de l'historique
// @Description  Signale l'écart sans corriger.
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID du client"
// @Success      200  {object}  dto.ReconcileResultDTO
// @Router       /api/credit/customers/{id}/reconcile [get]
func (h *CreditHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Relevé de compte PDF
// @Tags         credit
// @Security     Bearer
// @Produce      application/pdf
// @Param        id          path   string  true   "ID du client"
// @Param        start_date  query  string  false  "YYYY-MM-DD (début du mois par défaut)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (aujourd'hui par défaut)"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/statement.pdf [get]
func (h *CreditHandler) Statement(c *fiber.Ctx) error {
	var in dto.StatementRequest
	if e := bindQuery(c, &in); e != nil {
		return badRequest(c, e)
	}
	from, to, e := h.statementWindow(in)
	if e != nil {
		return badRequest(c, e)
	}
	pdf, filename, err := h.uc.Statement(c.UserContext(), GetOrganizationID(c), c.Params("id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(filename))
	return c.Send(pdf)
}

// statementWindow renvoie [début du premier jour, fin du dernier jour] dans le fuseau configuré.
func (h *CreditHandler) statementWindow(in dto.StatementRequest) (time.Time, time.Time, *dto.ErrorResponse) {
	today := h.now().In(h.loc)
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, h.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, h.loc)
	var err error
	if in.StartDate != "" {
		if from, err = time.ParseInLocation(statementDateLayout, in.StartDate, h.loc); err != nil {
			return from, end, &dto.ErrorResponse{Code: "VALIDATION", Message: "start_date: format YYYY-MM-DD attendu"}
		}
	}
	if in.EndDate != "" {
		if end, err = time.ParseInLocation(statementDateLayout, in.EndDate, h.loc); err != nil {
			return from, end, &dto.ErrorResponse{Code: "VALIDATION", Message: "end_date: format YYYY-MM-DD attendu"}
		}
	}
	return from, end.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
