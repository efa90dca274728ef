package entity

import "time"

// Tipos de movimiento del kardex.
const (
	MovementTipoEntrada = "ENTRADA" // aumenta stock
	MovementTipoSalida  = "SALIDA"  // disminuye stock
)

// Estados de un movimiento. ACTIVO -> ANULADO es la única transición
// permitida y es terminal.
const (
	MovementEstadoActivo  = "ACTIVO"
	MovementEstadoAnulado = "ANULADO"
)

// Movement es una línea del kardex (entrada o salida de stock).
// Las líneas son inmutables una vez creadas salvo por la transición de
// estado ACTIVO -> ANULADO; anular nunca borra la línea, crea un movimiento
// compensatorio del tipo opuesto enlazado vía AnulaA/AnuladoPor.
type Movement struct {
	ID          string
	Consecutivo int64 // asignado por la BD, monótono; ordena el kardex
	ProductoID  string
	Tipo        string // ENTRADA o SALIDA
	Cantidad    int64  // siempre > 0; el signo lo determina el tipo
	Detalle     string
	Usuario     string // vacío si el movimiento lo generó el sistema
	Estado      string
	AnulaA      string // ID del movimiento original que este compensa
	AnuladoPor  string // ID del compensatorio que anuló este movimiento
	CreatedAt   time.Time
}

// Delta devuelve el efecto del movimiento sobre el stock:
// +Cantidad para ENTRADA, -Cantidad para SALIDA.
func (m *Movement) Delta() int64 {
	if m.Tipo == MovementTipoEntrada {
		return m.Cantidad
	}
	return -m.Cantidad
}

// EsActivo indica si el movimiento aún cuenta para el stock.
func (m *Movement) EsActivo() bool {
	return m.Estado == MovementEstadoActivo
}
