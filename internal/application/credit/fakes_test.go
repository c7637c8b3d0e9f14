package credit_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// memStore base en mémoire; les écritures d'une transaction ne sont visibles qu'au commit.
type memStore struct {
	mu        sync.Mutex
	customers map[string]entity.CreditCustomer
	txs       []entity.CreditTransaction
	orgs      map[string]*entity.Organization
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[string]entity.CreditCustomer),
		orgs:      map[string]*entity.Organization{"org1": {ID: "org1", Name: "Cave du Plateau"}},
	}
}

func (s *memStore) put(c entity.CreditCustomer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *memStore) get(id string) entity.CreditCustomer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers[id]
}

func (s *memStore) txCount(customerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.txs {
		if t.CustomerID == customerID {
			n++
		}
	}
	return n
}

// ── dépôt clients ─────────────────────────────────────────────────────────────

type memCustomers struct {
	s       *memStore
	pending map[string]entity.CreditCustomer // nil hors transaction
}

func (r *memCustomers) Create(_ context.Context, c *entity.CreditCustomer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, id string) (*entity.CreditCustomer, error) {
	if r.pending != nil {
		if c, ok := r.pending[id]; ok {
			return &c, nil
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCustomers) GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.GetByID(ctx, id)
}

func (r *memCustomers) GetByPhone(_ context.Context, organizationID, phone string) (*entity.CreditCustomer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.OrganizationID == organizationID && c.Phone == phone && c.IsActive {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *memCustomers) Update(_ context.Context, c *entity.CreditCustomer) error {
	if r.pending != nil {
		r.pending[c.ID] = *c
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) List(ctx context.Context, organizationID string, f repository.CreditCustomerFilter) ([]*entity.CreditCustomer, int, error) {
	all, _ := r.ListAll(ctx, organizationID)
	var out []*entity.CreditCustomer
	for i := range all {
		c := all[i]
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, &c)
	}
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *memCustomers) ListAll(_ context.Context, organizationID string) ([]entity.CreditCustomer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.CreditCustomer
	for _, c := range r.s.customers {
		if c.OrganizationID == organizationID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── dépôt transactions ────────────────────────────────────────────────────────

type memTransactions struct {
	s       *memStore
	pending *[]entity.CreditTransaction
}

func (r *memTransactions) Create(_ context.Context, tx *entity.CreditTransaction) error {
	if r.pending != nil {
		*r.pending = append(*r.pending, *tx)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txs = append(r.s.txs, *tx)
	return nil
}

func (r *memTransactions) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]*entity.CreditTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CreditTransaction
	for i := len(r.s.txs) - 1; i >= 0; i-- {
		if r.s.txs[i].CustomerID == customerID {
			t := r.s.txs[i]
			out = append(out, &t)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactions) History(_ context.Context, customerID string, from, to *time.Time) ([]entity.CreditTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.CreditTransaction
	for _, t := range r.s.txs {
		if t.CustomerID != customerID {
			continue
		}
		if from != nil && t.TransactionDate.Before(*from) {
			continue
		}
		if to != nil && t.TransactionDate.After(*to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransactionDate.Before(out[j].TransactionDate) })
	return out, nil
}

// ── transaction, organisations, publication, PDF ──────────────────────────────

type memRunner struct {
	s *memStore
}

func (r *memRunner) RunCredit(_ context.Context, fn func(repository.CreditCustomerRepository, repository.CreditTransactionRepository) error) error {
	pendingCustomers := make(map[string]entity.CreditCustomer)
	var pendingTxs []entity.CreditTransaction
	if err := fn(&memCustomers{s: r.s, pending: pendingCustomers}, &memTransactions{s: r.s, pending: &pendingTxs}); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range pendingCustomers {
		r.s.customers[id] = c
	}
	r.s.txs = append(r.s.txs, pendingTxs...)
	return nil
}

type memOrgs struct {
	s *memStore
}

func (r *memOrgs) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	return r.s.orgs[id], nil
}

func (r *memOrgs) HasActiveModule(_ context.Context, organizationID, moduleName string) (bool, error) {
	_, ok := r.s.orgs[organizationID]
	return ok && moduleName == entity.ModuleCreditBook, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakePDF struct {
	last *dto.CreditStatementData
}

func (f *fakePDF) GenerateStatement(data *dto.CreditStatementData) ([]byte, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}
	f.last = data
	return []byte("%PDF-1.4 relevé"), nil
}
