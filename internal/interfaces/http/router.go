package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/clinicavet/kardex-api/internal/application/kardex"
	"github.com/clinicavet/kardex-api/internal/application/usecase"
)

// validate valida los DTOs de entrada (tags `validate`).
var validate = validator.New()

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *kardex.RegisterMovementUseCase
	ReverseMovement  *kardex.ReverseMovementUseCase
	KardexQuery      *kardex.QueryUseCase
	ProductUC        *usecase.ProductUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Kardex (movimientos de inventario)
	kardexGroup := api.Group("/kardex")
	kardexHandler := NewKardexHandler(deps.RegisterMovement, deps.ReverseMovement, deps.KardexQuery)
	kardexGroup.Post("/movimientos", kardexHandler.RegistrarMovimiento)
	kardexGroup.Get("/movimientos", kardexHandler.ListarMovimientos)
	kardexGroup.Post("/movimientos/:id/anular", kardexHandler.AnularMovimiento)

	// Catálogo de productos
	productos := api.Group("/productos")
	productHandler := NewProductHandler(deps.ProductUC)
	productos.Post("/", productHandler.Crear)
	productos.Get("/", productHandler.List)
	// Ruta fija antes de la paramétrica para que no capture "stock-bajo".
	productos.Get("/stock-bajo", productHandler.StockBajo)
	productos.Get("/:id", productHandler.GetByID)
	productos.Put("/:id", productHandler.Actualizar)
	productos.Delete("/:id", productHandler.Desactivar)
	productos.Get("/:id/stock", productHandler.Stock)
}
