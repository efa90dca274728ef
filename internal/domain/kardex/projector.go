package kardex

import (
	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
)

// Estados informativos del stock respecto al mínimo. Nunca bloquean una
// operación; el front-end los pinta como badge de alerta.
const (
	EstadoStockOK       = "OK"
	EstadoStockEnMinimo = "EN_MINIMO"
	EstadoStockBajo     = "BAJO"
)

// Delta devuelve el efecto sobre el stock de un movimiento de un tipo y
// cantidad dados: +cantidad para ENTRADA, -cantidad para SALIDA.
func Delta(tipo string, cantidad int64) int64 {
	if tipo == entity.MovementTipoEntrada {
		return cantidad
	}
	return -cantidad
}

// Aplicar calcula el stock resultante de aplicar un movimiento sobre el
// stock actual. Rechaza con ErrCantidadInvalida cantidades no positivas y
// con ErrStockInsuficiente resultados negativos (solo alcanzable en SALIDA).
func Aplicar(stockActual int64, tipo string, cantidad int64) (int64, error) {
	if cantidad <= 0 {
		return 0, domain.ErrCantidadInvalida
	}
	nuevo := stockActual + Delta(tipo, cantidad)
	if nuevo < 0 {
		return 0, domain.ErrStockInsuficiente
	}
	return nuevo, nil
}

// Revertir calcula el stock resultante de deshacer el efecto de un
// movimiento: anular una ENTRADA resta, anular una SALIDA suma. Anular una
// SALIDA nunca puede fallar la verificación; anular una ENTRADA falla con
// ErrNoSePuedeAnular si el stock ya fue consumido por salidas posteriores,
// sin recortar a cero.
func Revertir(stockActual int64, mov *entity.Movement) (int64, error) {
	nuevo := stockActual - mov.Delta()
	if nuevo < 0 {
		return 0, domain.ErrNoSePuedeAnular
	}
	return nuevo, nil
}

// EstadoStock clasifica el stock frente al umbral mínimo del producto:
// BAJO si está por debajo, EN_MINIMO si está exactamente en el umbral,
// OK en cualquier otro caso.
func EstadoStock(stockActual, stockMinimo int64) string {
	switch {
	case stockActual < stockMinimo:
		return EstadoStockBajo
	case stockActual == stockMinimo:
		return EstadoStockEnMinimo
	default:
		return EstadoStockOK
	}
}

// Replay recalcula el stock de un producto desde cero: suma los deltas de
// las líneas ACTIVAS que no son compensatorias. Un movimiento anulado queda
// excluido junto con su compensatorio, así el par no altera la suma y el
// resultado debe coincidir exactamente con Product.StockActual.
func Replay(movs []*entity.Movement) int64 {
	var stock int64
	for _, m := range movs {
		if m.EsActivo() && m.AnulaA == "" {
			stock += m.Delta()
		}
	}
	return stock
}
