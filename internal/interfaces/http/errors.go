package http

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
)

var validate = validator.New()

// errorMapping associe une erreur de domaine à un statut et un code HTTP.
// L'ordre compte: les erreurs les plus spécifiques d'abord.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrCreditLimitExceeded, fiber.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED"},
	{domain.ErrOverpaymentRejected, fiber.StatusUnprocessableEntity, "OVERPAYMENT_REJECTED"},
	{domain.ErrInvalidTransactionAmount, fiber.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInconsistentLineItems, fiber.StatusBadRequest, "INCONSISTENT_ITEMS"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrLockNotObtained, fiber.StatusConflict, "CUSTOMER_BUSY"},
	{domain.ErrMissingReferencePrice, fiber.StatusUnprocessableEntity, "MISSING_REFERENCE_PRICE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// respondError traduit une erreur de cas d'usage en réponse JSON.
// Les erreurs inconnues donnent 500 sans exposer le détail.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	if l := requestLogger(c); l != nil {
		l.Error().Err(err).Str("path", c.Path()).Msg("erreur interne")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "erreur interne"})
}

func badRequest(c *fiber.Ctx, e *dto.ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(e)
}

// bindJSON lit le corps puis applique les tags validate. Un corps vide est accepté
// (les requêtes sans corps obligatoire gardent leurs valeurs par défaut).
func bindJSON(c *fiber.Ctx, out interface{}) *dto.ErrorResponse {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return &dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps de requête invalide"}
		}
	}
	return validateStruct(out)
}

// bindQuery lit la query string puis applique les tags validate.
func bindQuery(c *fiber.Ctx, out interface{}) *dto.ErrorResponse {
	if err := c.QueryParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paramètres de requête invalides"}
	}
	return validateStruct(out)
}

// pageFromQuery lit limit/offset; les valeurs absentes prennent les défauts.
func pageFromQuery(c *fiber.Ctx) (dto.PageRequest, *dto.ErrorResponse) {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page, validateStruct(&page)
}

func validateStruct(v interface{}) *dto.ErrorResponse {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	return &dto.ErrorResponse{Code: "VALIDATION", Message: formatValidation(verrs)}
}

// formatValidation rend "champ: règle" trié, ex. "CreateCreditCustomerRequest.Name: required".
func formatValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+": "+fe.Tag())
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
