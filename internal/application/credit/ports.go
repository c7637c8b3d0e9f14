package credit

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// CreditTxRunner exécute fn dans une transaction PostgreSQL avec les dépôts du carnet.
// Commit si fn renvoie nil, Rollback sinon.
type CreditTxRunner interface {
	RunCredit(ctx context.Context, fn func(
		customers repository.CreditCustomerRepository,
		transactions repository.CreditTransactionRepository,
	) error) error
}

// StatementPDFGenerator rend le relevé de compte d'un client en PDF.
type StatementPDFGenerator interface {
	GenerateStatement(data *dto.CreditStatementData) ([]byte, error)
}
