package credit_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/lock"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	uc        *credit.UseCase
	store     *memStore
	publisher *recordingPublisher
	pdf       *fakePDF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	pdf := &fakePDF{}
	uc := credit.NewUseCase(
		&memCustomers{s: store},
		&memTransactions{s: store},
		&memOrgs{s: store},
		&memRunner{s: store},
		lock.NewKeyedMutex(5*time.Second),
		pub,
		pdf,
		domaincredit.DefaultAlertPolicy(),
		logger.Nop(),
	)
	uc.SetClock(func() time.Time { return fixedNow })
	return &fixture{uc: uc, store: store, publisher: pub, pdf: pdf}
}

func (f *fixture) seed(id string, balance, limit int64, status string) {
	f.store.put(entity.CreditCustomer{
		ID:             id,
		OrganizationID: "org1",
		Name:           "Client " + id,
		CreditLimit:    limit,
		CurrentBalance: balance,
		TotalCredited:  balance,
		Status:         status,
		IsActive:       true,
		CreatedAt:      fixedNow.AddDate(0, 0, -5),
		UpdatedAt:      fixedNow.AddDate(0, 0, -5),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Clients
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.CreateCustomer(ctx, "org1", dto.CreateCreditCustomerRequest{
		Name:        "  Maquis Le Baobab ",
		Phone:       "+33 6 12 34 56 78",
		CreditLimit: 50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maquis Le Baobab", out.Name)
	assert.Equal(t, "+33612345678", out.Phone)
	assert.Equal(t, entity.CreditStatusActive, out.Status)
	require.NotNil(t, out.AvailableCredit)
	assert.Equal(t, int64(50000), *out.AvailableCredit)

	_, err = f.uc.CreateCustomer(ctx, "org1", dto.CreateCreditCustomerRequest{Name: "Doublon", Phone: "+33612345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.uc.CreateCustomer(ctx, "org1", dto.CreateCreditCustomerRequest{Name: "Sans numéro valide", Phone: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateCustomer(ctx, "org1", dto.CreateCreditCustomerRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateEtDeleteCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 1000, 0, entity.CreditStatusActive)

	name := "Nouveau nom"
	out, err := f.uc.UpdateCustomer(ctx, "org1", "c1", dto.UpdateCreditCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Nouveau nom", out.Name)
	assert.Equal(t, int64(1000), out.CurrentBalance, "les soldes ne changent pas")

	require.NoError(t, f.uc.DeleteCustomer(ctx, "org1", "c1"))
	assert.False(t, f.store.get("c1").IsActive)

	_, err = f.uc.GetCustomer(ctx, "org1", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCustomer_SoldeDuEtClientGele(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 4500, 10000, entity.CreditStatusFrozen)

	require.NoError(t, f.uc.DeleteCustomer(context.Background(), "org1", "c1"))

	got := f.store.get("c1")
	assert.False(t, got.IsActive)
	assert.Equal(t, int64(4500), got.CurrentBalance, "le solde est conservé")
}

func TestGetCustomer_AutreOrganisation(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 0, 0, entity.CreditStatusActive)

	_, err := f.uc.GetCustomer(context.Background(), "org2", "c1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.RecordPayment(context.Background(), "org1", "u1", "inconnu", dto.RecordPaymentRequest{Amount: 10, PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomers_FiltreStatut(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 0, 0, entity.CreditStatusActive)
	f.seed("c2", 0, 0, entity.CreditStatusFrozen)
	f.seed("c3", 0, 0, entity.CreditStatusActive)

	out, err := f.uc.ListCustomers(context.Background(), "org1",
		dto.CreditCustomerListRequest{Status: entity.CreditStatusActive}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consommations et paiements
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordConsumptionEtPaiement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 0, 10000, entity.CreditStatusActive)

	op, err := f.uc.RecordConsumption(ctx, "org1", "u1", "c1", dto.RecordConsumptionRequest{
		Amount: 7800,
		Items:  []dto.CreditItemRequest{{ProductName: "Flag 65cl", Quantity: 12, UnitPrice: 650, Subtotal: 7800}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7800), op.Customer.CurrentBalance)
	assert.Equal(t, entity.CreditTxConsumption, op.Transaction.TransactionType)
	require.Len(t, op.Transaction.Items, 1)
	assert.Equal(t, "u1", op.Transaction.CreatedBy)

	op, err = f.uc.RecordPayment(ctx, "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 3000, PaymentMethod: entity.PaymentMethodMobileMoney})
	require.NoError(t, err)
	assert.Equal(t, int64(4800), op.Customer.CurrentBalance)
	assert.Equal(t, int64(3000), op.Customer.TotalPaid)
	require.NotNil(t, op.Customer.LastPaymentDate)

	stored := f.store.get("c1")
	require.NoError(t, domaincredit.CheckInvariant(stored))
	assert.Equal(t, 2, f.store.txCount("c1"))
	assert.Equal(t, 2, f.publisher.count())

	list, err := f.uc.ListTransactions(ctx, "org1", "c1", dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.CreditTxPayment, list[0].TransactionType, "plus récente d'abord")
}

func TestRecordConsumption_PlafondDepasseNeLaisseAucuneTrace(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 9000, 10000, entity.CreditStatusActive)

	_, err := f.uc.RecordConsumption(context.Background(), "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 1500})
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	assert.Equal(t, int64(9000), f.store.get("c1").CurrentBalance)
	assert.Equal(t, 0, f.store.txCount("c1"))
	assert.Equal(t, 0, f.publisher.count())

	op, err := f.uc.RecordConsumption(context.Background(), "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), op.Customer.CurrentBalance)
	require.NotNil(t, op.Customer.AvailableCredit)
	assert.Equal(t, int64(0), *op.Customer.AvailableCredit)
}

func TestRecordPayment_Surpaiement(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 1000, 0, entity.CreditStatusActive)

	_, err := f.uc.RecordPayment(context.Background(), "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 1001, PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrOverpaymentRejected)

	op, err := f.uc.RecordPayment(context.Background(), "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 1000, PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), op.Customer.CurrentBalance)
}

func TestRecord_MontantEtDateInvalides(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 1000, 0, entity.CreditStatusActive)

	_, err := f.uc.RecordConsumption(context.Background(), "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionAmount)

	future := fixedNow.Add(48 * time.Hour)
	_, err = f.uc.RecordPayment(context.Background(), "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 10, PaymentMethod: "cash", TransactionDate: &future})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrence
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordConsumption_ConcurrentesSurUnClient(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 0, 2500, entity.CreditStatusActive)

	var (
		wg       sync.WaitGroup
		accepted int32
		rejected int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordConsumption(context.Background(), "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 100})
			switch {
			case err == nil:
				atomic.AddInt32(&accepted, 1)
			case assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded):
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	c := f.store.get("c1")
	assert.Equal(t, int32(25), accepted)
	assert.Equal(t, int32(25), rejected)
	assert.Equal(t, int64(2500), c.CurrentBalance)
	assert.Equal(t, 25, f.store.txCount("c1"))
	require.NoError(t, domaincredit.CheckInvariant(c))
}

func TestConsommationsEtPaiementsConcurrents(t *testing.T) {
	f := newFixture(t)
	f.seed("c1", 5000, 0, entity.CreditStatusActive)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordConsumption(context.Background(), "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 100})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordPayment(context.Background(), "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 100, PaymentMethod: "cash"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c := f.store.get("c1")
	assert.Equal(t, int64(5000), c.CurrentBalance)
	assert.Equal(t, int64(9000), c.TotalCredited)
	assert.Equal(t, int64(4000), c.TotalPaid)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transitions d'état
// ──────────────────────────────────────────────────────────────────────────────

func TestFreezeFull_BloqueLesConsommationsPasLesPaiements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 7000, 20000, entity.CreditStatusActive)

	out, err := f.uc.Freeze(ctx, "org1", "c1", dto.FreezeRequest{Policy: "freeze_full", Reason: "impayés"})
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusFrozen, out.Status)
	assert.Equal(t, int64(7000), out.CreditLimit)

	_, err = f.uc.RecordConsumption(ctx, "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 100})
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)

	_, err = f.uc.RecordPayment(ctx, "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 2000, PaymentMethod: "cash"})
	require.NoError(t, err)

	_, err = f.uc.Freeze(ctx, "org1", "c1", dto.FreezeRequest{Policy: "freeze_full"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	limit := int64(0)
	out, err = f.uc.Unfreeze(ctx, "org1", "c1", dto.UnfreezeRequest{NewLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusActive, out.Status)
	assert.Nil(t, out.AvailableCredit, "sans plafond")
}

func TestDisableEtReactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 0, 0, entity.CreditStatusActive)

	_, err := f.uc.Disable(ctx, "org1", "c1", dto.DisableRequest{Reason: "fermeture"})
	require.NoError(t, err)
	_, err = f.uc.Unfreeze(ctx, "org1", "c1", dto.UnfreezeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	out, err := f.uc.Reactivate(ctx, "org1", "c1", dto.UnfreezeRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.CreditStatusActive, out.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertes, synthèse, rapprochement
// ──────────────────────────────────────────────────────────────────────────────

func TestListAlertsEtSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paid := func(id string, days int, balance int64) {
		f.seed(id, balance, 0, entity.CreditStatusActive)
		c := f.store.get(id)
		last := fixedNow.AddDate(0, 0, -days)
		c.LastPaymentDate = &last
		f.store.put(c)
	}
	paid("critique", 31, 500)
	paid("recent", 10, 500)
	paid("solde", 60, 0)
	paid("warning", 20, 800)

	alerts, err := f.uc.ListAlerts(ctx, "org1")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "critique", alerts[0].ID)
	assert.Equal(t, entity.AlertLevelCritical, alerts[0].AlertLevel)
	assert.Equal(t, "warning", alerts[1].ID)

	sum, err := f.uc.Summary(ctx, "org1")
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalCustomers)
	assert.Equal(t, 4, sum.ByStatus[entity.CreditStatusActive])
	assert.Equal(t, int64(1800), sum.TotalOutstanding)
	assert.Equal(t, 1, sum.CriticalAlerts)
	assert.Equal(t, 1, sum.WarningAlerts)
	assert.Equal(t, int64(1300), sum.OverdueAmount)
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 0, 0, entity.CreditStatusActive)

	_, err := f.uc.RecordConsumption(ctx, "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 4000})
	require.NoError(t, err)
	_, err = f.uc.RecordPayment(ctx, "org1", "u1", "c1", dto.RecordPaymentRequest{Amount: 1500, PaymentMethod: "cash"})
	require.NoError(t, err)

	res, err := f.uc.Reconcile(ctx, "org1", "c1")
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 2, res.Transactions)
	assert.Equal(t, int64(2500), res.ReplayedBalance)

	drifted := f.store.get("c1")
	drifted.CurrentBalance += 100
	drifted.TotalCredited += 100
	f.store.put(drifted)

	res, err = f.uc.Reconcile(ctx, "org1", "c1")
	require.NoError(t, err)
	assert.False(t, res.Consistent)
	assert.Equal(t, int64(2600), res.StoredBalance)
	assert.Equal(t, int64(2500), res.ReplayedBalance)
}

// ──────────────────────────────────────────────────────────────────────────────
// Relevé
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildStatement_SoldeOuvertureEtCourant(t *testing.T) {
	c := &entity.CreditCustomer{ID: "c1", Name: "Client", CreditLimit: 0}
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }
	history := []entity.CreditTransaction{
		{TransactionType: entity.CreditTxConsumption, Amount: 5000, TransactionDate: day(1)},
		{TransactionType: entity.CreditTxPayment, Amount: 2000, PaymentMethod: "cash", TransactionDate: day(3)},
		{TransactionType: entity.CreditTxConsumption, Amount: 1000, TransactionDate: day(10),
			Items: []entity.CreditTransactionItem{{ProductName: "Castel 65cl", Quantity: 2, UnitPrice: 500, Subtotal: 1000}}},
		{TransactionType: entity.CreditTxPayment, Amount: 500, PaymentMethod: "mobile_money", TransactionDate: day(12)},
	}

	data := credit.BuildStatement(c, history, day(5), day(31))
	assert.Equal(t, int64(3000), data.OpeningBalance)
	require.Len(t, data.Lines, 2)
	assert.Equal(t, int64(4000), data.Lines[0].Balance)
	assert.Equal(t, "Castel 65cl x2", data.Lines[0].Label)
	assert.Equal(t, int64(3500), data.Lines[1].Balance)
	assert.Equal(t, int64(1000), data.TotalDebit)
	assert.Equal(t, int64(500), data.TotalCredit)
	assert.Equal(t, int64(3500), data.ClosingBalance)

	empty := credit.BuildStatement(c, history, day(20), day(25))
	assert.Empty(t, empty.Lines)
	assert.Equal(t, int64(3500), empty.OpeningBalance)
	assert.Equal(t, int64(3500), empty.ClosingBalance)
}

func TestStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed("c1", 0, 0, entity.CreditStatusActive)
	_, err := f.uc.RecordConsumption(ctx, "org1", "u1", "c1", dto.RecordConsumptionRequest{Amount: 4000})
	require.NoError(t, err)

	pdf, filename, err := f.uc.Statement(ctx, "org1", "c1", fixedNow.AddDate(0, 0, -7), fixedNow)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, filename, "releve_")
	require.NotNil(t, f.pdf.last)
	assert.Equal(t, "Cave du Plateau", f.pdf.last.OrganizationName)
	assert.Equal(t, int64(4000), f.pdf.last.ClosingBalance)

	_, _, err = f.uc.Statement(ctx, "org1", "c1", fixedNow, fixedNow.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
