package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/ravito-ci/ravito-api/internal/interfaces/http"
	pkgjwt "github.com/ravito-ci/ravito-api/pkg/jwt"
)

type stubModules struct {
	active bool
	err    error
	calls  []string
}

func (s *stubModules) HasActiveModule(_ context.Context, orgID, module string) (bool, error) {
	s.calls = append(s.calls, orgID+"/"+module)
	return s.active, s.err
}

// creditApp monte le carnet avec un cas d'usage nil: seules les requêtes rejetées
// avant l'appel du cas d'usage sont testées ici.
func creditApp(modules *stubModules) *fiber.App {
	app := fiber.New()
	h := apphttp.NewCreditHandler(nil, nil)
	grp := app.Group("/api/credit",
		apphttp.AuthMiddleware(testJWTSecret, testIssuer),
		apphttp.RequireRole(pkgjwt.RoleClient),
		apphttp.RequireModule("credit_book", modules, nil),
	)
	grp.Post("/customers", h.CreateCustomer)
	grp.Post("/customers/:id/payments", h.RecordPayment)
	grp.Post("/customers/:id/freeze", h.Freeze)
	grp.Get("/customers/:id/statement.pdf", h.Statement)
	grp.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleClient))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireModule
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireModule_ModuleActif(t *testing.T) {
	mods := &stubModules{active: true}
	status, body := send(t, creditApp(mods), http.MethodGet, "/api/credit/ping", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body)
	assert.Equal(t, []string{testOrgID + "/credit_book"}, mods.calls)
}

func TestRequireModule_ModuleNonSouscrit_Renvoie403(t *testing.T) {
	status, body := send(t, creditApp(&stubModules{}), http.MethodGet, "/api/credit/ping", "")

	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "MODULE_DISABLED")
}

func TestRequireModule_BaseIndisponible_Renvoie503(t *testing.T) {
	status, body := send(t, creditApp(&stubModules{err: errors.New("connexion refusée")}), http.MethodGet, "/api/credit/ping", "")

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "MODULE_CHECK_FAILED")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validation des entrées
// ──────────────────────────────────────────────────────────────────────────────

func TestCreditHandler_Validation(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"nom manquant", http.MethodPost, "/api/credit/customers", `{"phone":"0707070707"}`, "VALIDATION"},
		{"plafond négatif", http.MethodPost, "/api/credit/customers", `{"name":"Maquis Chez Tanti","credit_limit":-1}`, "VALIDATION"},
		{"corps illisible", http.MethodPost, "/api/credit/customers", `{"name":`, "INVALID_BODY"},
		{"mode de paiement inconnu", http.MethodPost, "/api/credit/customers/c1/payments", `{"amount":5000,"payment_method":"cheque"}`, "VALIDATION"},
		{"politique de gel inconnue", http.MethodPost, "/api/credit/customers/c1/freeze", `{"policy":"suspend"}`, "VALIDATION"},
		{"date de relevé invalide", http.MethodGet, "/api/credit/customers/c1/statement.pdf?start_date=01/03/2026", "", "VALIDATION"},
	}
	app := creditApp(&stubModules{active: true})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := send(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, tc.code)
		})
	}
}
