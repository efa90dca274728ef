package repository

import "github.com/clinicavet/kardex-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia del catálogo de
// productos. UpdateStock solo debe invocarse desde el motor del kardex,
// dentro de la misma transacción que escribe el movimiento.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar el check-then-write de stock por producto.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(id string, stockActual int64) error
	List(soloActivos bool) ([]*entity.Product, error)
	// ListBajoMinimo devuelve los productos activos con stock_actual <= stock_minimo.
	ListBajoMinimo() ([]*entity.Product, error)
	Deactivate(id string) error
}
