package grid

import (
	"context"
	"io"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// GridTxRunner exécute fn dans une transaction avec le dépôt des grilles.
type GridTxRunner interface {
	RunGrid(ctx context.Context, fn func(grids repository.SupplierPriceGridRepository) error) error
}

// GridSheetCodec lecture/écriture du classeur des grilles (XLSX).
// Decode renvoie les lignes lisibles et, séparément, les lignes rejetées.
type GridSheetCodec interface {
	Encode(rows []dto.GridSheetRow) ([]byte, error)
	Decode(r io.Reader) ([]dto.GridSheetRow, []dto.ImportRowError, error)
}
