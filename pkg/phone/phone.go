// Package phone normalise les numéros de téléphone des clients (Côte d'Ivoire par défaut).
package phone

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultRegion région ISO utilisée quand le numéro n'a pas d'indicatif international.
const DefaultRegion = "CI"

// ErrInvalidPhone numéro illisible ou invalide pour la région.
var ErrInvalidPhone = errors.New("numéro de téléphone invalide")

// Normalize valide un numéro et le renvoie au format E.164 (+225...).
// Un numéro vide reste vide (le téléphone est facultatif dans le carnet).
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultRegion
	}
	p, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
