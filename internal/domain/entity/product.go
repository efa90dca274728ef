package entity

import "time"

// Product representa un producto del inventario de la clínica.
// StockActual es una proyección derivada del kardex: debe ser siempre igual a
// la suma de deltas de los movimientos ACTIVOS del producto, y solo la muta
// el motor de movimientos. StockMinimo es un umbral informativo, nunca un
// límite duro de escritura.
type Product struct {
	ID            string
	Nombre        string
	CodigoInterno string // código único por producto
	CodigoBarras  string // opcional
	StockActual   int64
	StockMinimo   int64
	Activo        bool // soft delete: nunca se borra, solo se desactiva
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
