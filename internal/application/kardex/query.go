package kardex

import (
	"context"

	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
)

// Límites de paginación del listado del kardex.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// ConsultaMovimientos filtros del listado, tal como llegan del front-end.
type ConsultaMovimientos struct {
	ProductoID string
	Texto      string // búsqueda libre sobre nombre de producto y detalle
	Limit      int
	Offset     int
}

// QueryUseCase consultas de solo lectura sobre el kardex. No tiene efectos
// secundarios y pagina sobre un ledger de crecimiento no acotado.
type QueryUseCase struct {
	movRepo repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(movRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{movRepo: movRepo}
}

// Listar devuelve una página de movimientos del más reciente al más antiguo,
// con el total sin paginar. La búsqueda libre es insensible a mayúsculas y
// diacríticos.
func (uc *QueryUseCase) Listar(ctx context.Context, consulta ConsultaMovimientos) ([]*repository.MovementConProducto, int64, error) {
	limit := consulta.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := consulta.Offset
	if offset < 0 {
		offset = 0
	}

	filter := repository.MovementFilter{
		ProductoID: consulta.ProductoID,
		Texto:      domkardex.NormalizarBusqueda(consulta.Texto),
		Limit:      limit,
		Offset:     offset,
	}
	return uc.movRepo.List(filter)
}
