package pricing

import "github.com/shopspring/decimal"

// Band classe d'affichage d'un écart.
type Band string

const (
	BandLow    Band = "low"
	BandNormal Band = "normal"
	BandHigh   Band = "high"
)

// Bands seuils (en %) de classification: pct < Low -> low, pct > High -> high, sinon normal.
type Bands struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// DefaultBands -5% / +5%.
func DefaultBands() Bands {
	return Bands{Low: decimal.NewFromInt(-5), High: decimal.NewFromInt(5)}
}

// NewBands construit des bandes à partir de pourcentages flottants (configuration).
func NewBands(lowPct, highPct float64) Bands {
	return Bands{Low: decimal.NewFromFloat(lowPct), High: decimal.NewFromFloat(highPct)}
}

// Classify range un pourcentage d'écart dans une bande.
func (b Bands) Classify(pct decimal.Decimal) Band {
	switch {
	case pct.LessThan(b.Low):
		return BandLow
	case pct.GreaterThan(b.High):
		return BandHigh
	default:
		return BandNormal
	}
}
