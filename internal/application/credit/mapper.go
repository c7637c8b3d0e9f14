package credit

import (
	"github.com/ravito-ci/ravito-api/internal/application/dto"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

func (uc *UseCase) toCustomerResponse(c *entity.CreditCustomer) dto.CreditCustomerResponse {
	now := uc.now()
	out := dto.CreditCustomerResponse{
		ID:               c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		Address:          c.Address,
		CreditLimit:      c.CreditLimit,
		CurrentBalance:   c.CurrentBalance,
		TotalCredited:    c.TotalCredited,
		TotalPaid:        c.TotalPaid,
		Status:           c.Status,
		FreezeReason:     c.FreezeReason,
		LastPaymentDate:  c.LastPaymentDate,
		DaysSincePayment: domaincredit.DaysSincePayment(*c, now),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if !c.HasUnlimitedCredit() {
		available := c.AvailableCredit()
		out.AvailableCredit = &available
	}
	if a := uc.policy.Classify(*c, now); a != nil {
		out.AlertLevel = a.AlertLevel
	}
	return out
}

func toTransactionResponse(t *entity.CreditTransaction) dto.CreditTransactionResponse {
	out := dto.CreditTransactionResponse{
		ID:              t.ID,
		CustomerID:      t.CustomerID,
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		PaymentMethod:   t.PaymentMethod,
		Notes:           t.Notes,
		TransactionDate: t.TransactionDate,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.CreditItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}
