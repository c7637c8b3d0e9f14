package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

// moduleChecker contrat minimal du middleware; implémenté par *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, organizationID, moduleName string) (bool, error)
}

// RequireModule vérifie que l'organisation du jeton a souscrit le module.
// À placer après AuthMiddleware.
//   - 401 sans organization_id dans le jeton.
//   - 503 si la base ne répond pas.
//   - 403 module non souscrit.
func RequireModule(moduleName string, checker moduleChecker, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		orgID := GetOrganizationID(c)
		if orgID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "organization_id absent du jeton",
			})
		}

		active, err := checker.HasActiveModule(c.UserContext(), orgID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("organization_id", orgID).Str("module", moduleName).Msg("vérification de module impossible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "vérification du module impossible, réessayez plus tard",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "le module '" + moduleName + "' n'est pas actif pour cette organisation",
			})
		}
		return c.Next()
	}
}
