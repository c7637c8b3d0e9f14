package credit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

func TestFreeze_Full(t *testing.T) {
	c := activeCustomer(7000, 20000)
	got, err := credit.Freeze(c, credit.FreezeFull, 0, "retard de paiement", now)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), got.CreditLimit)
	assert.Equal(t, entity.CreditStatusFrozen, got.Status)
	assert.Equal(t, "retard de paiement", got.FreezeReason)

	_, err = credit.ApplyTransaction(got, consumption(1))
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
}

func TestFreeze_ReduceLimit(t *testing.T) {
	got, err := credit.Freeze(activeCustomer(3000, 20000), credit.FreezeReduceLimit, 5000, "", now)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.CreditLimit)
	assert.Equal(t, entity.CreditStatusFrozen, got.Status)

	_, err = credit.Freeze(activeCustomer(3000, 20000), credit.FreezeReduceLimit, 0, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFreeze_DisableEstUneDesactivation(t *testing.T) {
	got, err := credit.Freeze(activeCustomer(3000, 0), credit.FreezeDisable, 0, "fraude", now)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusDisabled, got.Status)
}

func TestFreeze_DepuisEtatNonActif(t *testing.T) {
	c := activeCustomer(3000, 0)
	c.Status = entity.CreditStatusFrozen
	_, err := credit.Freeze(c, credit.FreezeFull, 0, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = credit.Freeze(activeCustomer(0, 0), "inconnue", 0, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUnfreeze(t *testing.T) {
	frozen, err := credit.Freeze(activeCustomer(7000, 20000), credit.FreezeFull, 0, "retard", now)
	require.NoError(t, err)

	kept, err := credit.Unfreeze(frozen, nil, now)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusActive, kept.Status)
	assert.Equal(t, int64(7000), kept.CreditLimit)
	assert.Empty(t, kept.FreezeReason)

	unlimited := int64(0)
	open, err := credit.Unfreeze(frozen, &unlimited, now)
	require.NoError(t, err)
	assert.True(t, open.HasUnlimitedCredit())

	_, err = credit.Unfreeze(activeCustomer(0, 0), nil, now)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDisableEtReactivate(t *testing.T) {
	disabled, err := credit.Disable(activeCustomer(1000, 0), "fermeture", now)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusDisabled, disabled.Status)

	_, err = credit.Unfreeze(disabled, nil, now)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "un client désactivé ne se dégèle pas")
	_, err = credit.Disable(disabled, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	limit := int64(15000)
	back, err := credit.Reactivate(disabled, &limit, now)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusActive, back.Status)
	assert.Equal(t, int64(15000), back.CreditLimit)
}

func TestSoftDelete_BloqueLesTransitions(t *testing.T) {
	deleted := credit.SoftDelete(activeCustomer(1000, 0), now)
	assert.False(t, deleted.IsActive)

	_, err := credit.Freeze(deleted, credit.FreezeFull, 0, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
