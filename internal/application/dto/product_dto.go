package dto

import "time"

// CrearProductoRequest body para POST /api/productos.
type CrearProductoRequest struct {
	Nombre        string `json:"nombre" validate:"required"`
	CodigoInterno string `json:"codigo_interno" validate:"required"`
	CodigoBarras  string `json:"codigo_barras,omitempty"`
	StockMinimo   int64  `json:"stock_minimo" validate:"gte=0"`
}

// ActualizarProductoRequest body para PUT /api/productos/:id.
// No permite tocar stock_actual: ese campo solo lo muta el kardex.
type ActualizarProductoRequest struct {
	Nombre       string `json:"nombre" validate:"required"`
	CodigoBarras string `json:"codigo_barras,omitempty"`
	StockMinimo  int64  `json:"stock_minimo" validate:"gte=0"`
}

// ProductoResponse representación de un producto del catálogo.
type ProductoResponse struct {
	ID            string    `json:"id"`
	Nombre        string    `json:"nombre"`
	CodigoInterno string    `json:"codigo_interno"`
	CodigoBarras  string    `json:"codigo_barras,omitempty"`
	StockActual   int64     `json:"stock_actual"`
	StockMinimo   int64     `json:"stock_minimo"`
	EstadoStock   string    `json:"estado_stock"`
	Activo        bool      `json:"activo"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
