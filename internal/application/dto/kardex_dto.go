package dto

import "time"

// RegistrarMovimientoRequest body para POST /api/kardex/movimientos.
// La cantidad se valida en dominio para distinguir CANTIDAD_INVALIDA de un
// body malformado.
type RegistrarMovimientoRequest struct {
	Tipo       string `json:"tipo" validate:"required,oneof=ENTRADA SALIDA"`
	ProductoID string `json:"producto_id" validate:"required"`
	Cantidad   int64  `json:"cantidad"`
	Detalle    string `json:"detalle,omitempty"`
	Usuario    string `json:"usuario,omitempty"`
}

// AnularMovimientoRequest body para POST /api/kardex/movimientos/:id/anular.
type AnularMovimientoRequest struct {
	Usuario string `json:"usuario,omitempty"`
}

// MovimientoResponse una línea del kardex tal como la consume el front-end.
// Estado ANULADO se pinta tachado ("Anulado") en la UI.
type MovimientoResponse struct {
	ID             string    `json:"id"`
	Consecutivo    int64     `json:"consecutivo"`
	Fecha          time.Time `json:"fecha"`
	ProductoID     string    `json:"producto_id"`
	ProductoNombre string    `json:"producto_nombre,omitempty"`
	Tipo           string    `json:"tipo"`
	Cantidad       int64     `json:"cantidad"`
	Detalle        string    `json:"detalle,omitempty"`
	Usuario        string    `json:"usuario,omitempty"`
	Estado         string    `json:"estado"`
	AnulaA         string    `json:"anula_a,omitempty"`
	AnuladoPor     string    `json:"anulado_por,omitempty"`
}

// MovimientoCreadoResponse respuesta de registrar o anular un movimiento:
// la línea creada más el stock resultante y su estado frente al mínimo.
type MovimientoCreadoResponse struct {
	MovimientoResponse
	StockResultante int64  `json:"stock_resultante"`
	EstadoStock     string `json:"estado_stock"`
}

// ListaMovimientosResponse página del kardex, del más reciente al más antiguo.
type ListaMovimientosResponse struct {
	Total       int64                `json:"total"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}

// StockResponse lectura de stock de un producto para el badge de la UI.
type StockResponse struct {
	ProductoID  string `json:"producto_id"`
	StockActual int64  `json:"stock_actual"`
	StockMinimo int64  `json:"stock_minimo"`
	EstadoStock string `json:"estado_stock"`
}
