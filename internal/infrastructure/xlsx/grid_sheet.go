// Package xlsx lit et écrit le classeur des grilles fournisseurs (excelize).
package xlsx

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/grid"
)

var _ grid.GridSheetCodec = (*GridSheetCodec)(nil)

// SheetName feuille écrite par l'export et lue en priorité à l'import.
const SheetName = "Grilles"

// Colonnes du classeur, dans l'ordre.
var headers = []string{
	"product_id", "Produit", "zone_id", "Prix unitaire", "Prix casier",
	"Consigne", "Stock initial", "Quantité min.", "Remise %",
}

// GridSheetCodec implémente grid.GridSheetCodec.
type GridSheetCodec struct{}

// NewGridSheetCodec construit le codec.
func NewGridSheetCodec() *GridSheetCodec { return &GridSheetCodec{} }

// Encode écrit un modèle pré-rempli: une ligne par produit, en-tête en ligne 1.
func (c *GridSheetCodec) Encode(rows []dto.GridSheetRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renommer la feuille: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: en-tête: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(SheetName, "A1", last, bold)
	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "B", 28)
	_ = f.SetColWidth(SheetName, "C", "C", 38)
	_ = f.SetColWidth(SheetName, "D", "I", 14)

	for i, r := range rows {
		values := []any{
			r.ProductID, r.ProductName, r.ZoneID, r.UnitPrice, r.CratePrice,
			r.ConsignPrice, r.InitialStock, r.MinimumOrderQuantity, r.DiscountPercentage.StringFixed(2),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: ligne %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: écrire le classeur: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode lit la feuille "Grilles" (ou la première). Les lignes vides sont ignorées;
// une cellule illisible rejette sa ligne seulement.
func (c *GridSheetCodec) Decode(r io.Reader) ([]dto.GridSheetRow, []dto.ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: ouvrir le classeur: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil, fmt.Errorf("xlsx: classeur sans feuille")
		}
		sheet = list[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: lire la feuille %s: %w", sheet, err)
	}

	var (
		rows    []dto.GridSheetRow
		rowErrs []dto.ImportRowError
	)
	for i, raw := range cells {
		if i == 0 || blank(raw) {
			continue
		}
		row, err := parseRow(i+1, raw)
		if err != nil {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: i + 1, Message: err.Error()})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func parseRow(n int, raw []string) (dto.GridSheetRow, error) {
	get := func(i int) string {
		if i < len(raw) {
			return strings.TrimSpace(raw[i])
		}
		return ""
	}
	row := dto.GridSheetRow{Row: n, ProductID: get(0), ProductName: get(1), ZoneID: get(2)}
	if row.ProductID == "" {
		return row, fmt.Errorf("product_id manquant")
	}

	ints := []struct {
		col  int
		dest *int64
	}{
		{3, &row.UnitPrice}, {4, &row.CratePrice}, {5, &row.ConsignPrice},
		{6, &row.InitialStock}, {7, &row.MinimumOrderQuantity},
	}
	for _, it := range ints {
		v, err := parseAmount(get(it.col))
		if err != nil {
			return row, fmt.Errorf("colonne %q: %v", headers[it.col], err)
		}
		*it.dest = v
	}

	row.DiscountPercentage = decimal.Zero
	if s := strings.TrimSuffix(strings.ReplaceAll(get(8), ",", "."), "%"); s != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return row, fmt.Errorf("colonne %q: valeur %q illisible", headers[8], get(8))
		}
		row.DiscountPercentage = d
	}
	return row, nil
}

// parseAmount entier FCFA; tolère les espaces de milliers et un ".0" final.
func parseAmount(s string) (int64, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	fv, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || fv != math.Trunc(fv) {
		return 0, fmt.Errorf("montant entier attendu, %q reçu", s)
	}
	if fv > math.MaxInt64 || fv < math.MinInt64 {
		return 0, fmt.Errorf("montant hors limites")
	}
	return int64(fv), nil
}

func blank(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
