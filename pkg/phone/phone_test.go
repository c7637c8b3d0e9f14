package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravito-ci/ravito-api/pkg/phone"
)

func TestNormalize_VideResteVide(t *testing.T) {
	out, err := phone.Normalize("   ", "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestNormalize_FormatInternational(t *testing.T) {
	out, err := phone.Normalize("+33 6 12 34 56 78", "")
	require.NoError(t, err)
	assert.Equal(t, "+33612345678", out)
}

func TestNormalize_RegionExplicite(t *testing.T) {
	out, err := phone.Normalize("06 12 34 56 78", "FR")
	require.NoError(t, err)
	assert.Equal(t, "+33612345678", out)
}

func TestNormalize_Invalide(t *testing.T) {
	for _, raw := range []string{"123", "abc", "+33 1"} {
		_, err := phone.Normalize(raw, "")
		assert.ErrorIs(t, err, phone.ErrInvalidPhone, raw)
	}
}
