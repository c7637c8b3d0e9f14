// Package pdf rend le relevé de compte d'un client du carnet de crédit.
//
// Mise en page A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  EN-TÊTE: organisation          │  RELEVÉ DE COMPTE + période │
//	│  CLIENT: nom, téléphone, adresse, plafond, statut            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Solde d'ouverture                                           │
//	│  TABLE: Date | Libellé | Mode | Débit | Crédit | Solde       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAUX: débits / crédits / SOLDE DE CLÔTURE                 │
//	│  PIED: date d'édition                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

var _ credit.StatementPDFGenerator = (*StatementGenerator)(nil)

// ── Palette ──────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 230, Green: 120, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var paymentModes = map[string]string{
	entity.PaymentMethodCash:        "Espèces",
	entity.PaymentMethodMobileMoney: "Mobile Money",
	entity.PaymentMethodTransfer:    "Virement",
}

var statusLabels = map[string]string{
	entity.CreditStatusActive:   "Actif",
	entity.CreditStatusFrozen:   "Gelé",
	entity.CreditStatusDisabled: "Désactivé",
}

// StatementGenerator implémente credit.StatementPDFGenerator avec Maroto v2.
type StatementGenerator struct{}

// NewStatementGenerator construit le générateur.
func NewStatementGenerator() *StatementGenerator { return &StatementGenerator{} }

// GenerateStatement rend le relevé et renvoie les octets du PDF.
func (g *StatementGenerator) GenerateStatement(data *dto.CreditStatementData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Relevé de compte "+data.CustomerName, true).
		WithAuthor(data.OrganizationName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(openingRow(data))
	m.AddRows(lineRows(data.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: générer le relevé: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ─────────────────────────────────────────────────────────────────

func headerRow(data *dto.CreditStatementData) core.Row {
	period := fmt.Sprintf("Du %s au %s", data.From.Format("02/01/2006"), data.To.Format("02/01/2006"))
	return row.New(18).Add(
		col.New(7).Add(
			text.New(data.OrganizationName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Carnet de crédit", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("RELEVÉ DE COMPTE", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(period, props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func customerRow(data *dto.CreditStatementData) core.Row {
	limit := "Sans plafond"
	if data.CreditLimit > 0 {
		limit = money.Format(data.CreditLimit)
	}
	return row.New(18).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(data.CustomerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Tél: %s   |   Adresse: %s   |   Plafond: %s   |   Statut: %s",
				nonEmpty(data.CustomerPhone, "-"),
				nonEmpty(data.CustomerAddress, "-"),
				limit,
				nonEmpty(statusLabels[data.Status], data.Status),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Date", 2, align.Left),
		h("Libellé", 4, align.Left),
		h("Mode", 1, align.Center),
		h("Débit", 2, align.Right),
		h("Crédit", 1, align.Right),
		h("Solde", 2, align.Right),
	)
}

func openingRow(data *dto.CreditStatementData) core.Row {
	return row.New(7).Add(
		col.New(2).Add(text.New(data.From.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(8).Add(text.New("Solde d'ouverture", props.Text{Style: fontstyle.Italic, Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(money.Format(data.OpeningBalance), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

// lineRows une ligne par transaction; colonne vide quand le montant est nul.
func lineRows(lines []dto.StatementLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	amount := func(v int64) string {
		if v == 0 {
			return ""
		}
		return money.Format(v)
	}
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(l.Date.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Label, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(paymentModes[l.PaymentMode], props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(amount(l.Debit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorRed})),
			col.New(1).Add(text.New(amount(l.Credit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money.Format(l.Balance), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(data *dto.CreditStatementData) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	closingColor := colorPrimary
	if data.ClosingBalance > 0 {
		closingColor = colorRed
	}
	return row.New(20).Add(
		col.New(5),
		col.New(4).Add(
			label("Total consommations:"),
			label("Total paiements:"),
			text.New("SOLDE DE CLÔTURE:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12,
			}),
		),
		col.New(3).Add(
			value(money.Format(data.TotalDebit)),
			text.New(money.Format(data.TotalCredit), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 6}),
			text.New(money.Format(data.ClosingBalance), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: closingColor, Right: 1, Top: 12,
			}),
		),
	)
}

func footerRow(data *dto.CreditStatementData) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			fmt.Sprintf("Édité le %s. Montants en francs CFA. Relevé établi à partir du journal des transactions du carnet.",
				data.GeneratedAt.Format("02/01/2006 à 15:04")),
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
