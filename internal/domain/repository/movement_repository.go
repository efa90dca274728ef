package repository

import "github.com/clinicavet/kardex-api/internal/domain/entity"

// MovementFilter filtros para consultar el kardex. Texto debe venir ya
// normalizado (minúsculas, sin diacríticos) por el caso de uso.
type MovementFilter struct {
	ProductoID string
	Texto      string
	Limit      int
	Offset     int
}

// MovementConProducto enriquece una línea del kardex con el nombre del
// producto para el listado del front-end.
type MovementConProducto struct {
	entity.Movement
	ProductoNombre string
}

// MovementRepository define el puerto de persistencia del kardex.
// El kardex es append-only: ninguna operación borra ni reescribe líneas;
// la única mutación permitida es la transición de estado vía MarkAnulado.
type MovementRepository interface {
	// Create persiste un movimiento nuevo y completa Consecutivo y CreatedAt
	// con los valores asignados por el almacenamiento.
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	// GetForUpdate bloquea la fila del movimiento para decidir la anulación
	// bajo exclusión (a lo sumo una anulación por movimiento).
	GetForUpdate(id string) (*entity.Movement, error)
	// MarkAnulado pasa el movimiento a ANULADO y enlaza el compensatorio.
	// Falla con ErrMovimientoYaAnulado si ya estaba anulado y con
	// ErrNotFound si no existe.
	MarkAnulado(id, anuladoPor string) error
	// List devuelve movimientos del más reciente al más antiguo junto con el
	// total sin paginar.
	List(filter MovementFilter) ([]*MovementConProducto, int64, error)
	// ListByProduct devuelve todos los movimientos de un producto, del más
	// reciente al más antiguo.
	ListByProduct(productoID string) ([]*entity.Movement, error)
}
