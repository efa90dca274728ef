package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Todos son rechazos definitivos: el caller debe corregir la petición antes
// de reintentar. Los fallos de infraestructura se envuelven con %w y nunca
// se mapean a estos valores.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrProductoNoEncontrado = errors.New("producto no encontrado o inactivo")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrCantidadInvalida     = errors.New("la cantidad debe ser mayor que cero")
	ErrDuplicado            = errors.New("recurso duplicado")
	ErrStockInsuficiente    = errors.New("stock insuficiente")
	ErrMovimientoYaAnulado  = errors.New("el movimiento ya fue anulado")
	ErrNoSePuedeAnular      = errors.New("no se puede anular: stock ya consumido")
	ErrAnulacionDeAnulacion = errors.New("un movimiento de anulación no puede anularse")
)
