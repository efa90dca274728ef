package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicavet/kardex-api/internal/application/dto"
	"github.com/clinicavet/kardex-api/internal/application/usecase"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
)

// ProductHandler maneja las peticiones HTTP del catálogo de productos.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Crear godoc
// @Summary      Crear producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearProductoRequest  true  "nombre, codigo_interno, codigo_barras, stock_minimo"
// @Success      201   {object}  dto.ProductoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/productos [post]
func (h *ProductHandler) Crear(c *fiber.Ctx) error {
	var in dto.CrearProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: " + err.Error()})
	}

	product, err := h.uc.Crear(c.Context(), usecase.CrearInput{
		Nombre:        in.Nombre,
		CodigoInterno: in.CodigoInterno,
		CodigoBarras:  in.CodigoBarras,
		StockMinimo:   in.StockMinimo,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(productoResponse(product))
}

// List godoc
// @Summary      Listar productos
// @Tags         productos
// @Produce      json
// @Param        incluir_inactivos  query  bool  false  "Incluir productos desactivados"
// @Success      200  {array}  dto.ProductoResponse
// @Router       /api/productos [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.uc.List(c.Context(), !c.QueryBool("incluir_inactivos"))
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ProductoResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productoResponse(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         productos
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productos/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(productoResponse(product))
}

// Actualizar godoc
// @Summary      Actualizar producto
// @Description  Edita nombre, código de barras y stock mínimo. El stock
//
//	actual no es editable: solo lo mueve el kardex.
//
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.ActualizarProductoRequest  true  "nombre, codigo_barras, stock_minimo"
// @Success      200   {object}  dto.ProductoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/productos/{id} [put]
func (h *ProductHandler) Actualizar(c *fiber.Ctx) error {
	var in dto.ActualizarProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: " + err.Error()})
	}

	product, err := h.uc.Actualizar(c.Context(), c.Params("id"), usecase.ActualizarInput{
		Nombre:       in.Nombre,
		CodigoBarras: in.CodigoBarras,
		StockMinimo:  in.StockMinimo,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(productoResponse(product))
}

// Desactivar godoc
// @Summary      Desactivar producto (soft delete)
// @Tags         productos
// @Param        id  path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productos/{id} [delete]
func (h *ProductHandler) Desactivar(c *fiber.Ctx) error {
	if err := h.uc.Desactivar(c.Context(), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stock godoc
// @Summary      Stock actual y mínimo de un producto
// @Tags         productos
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productos/{id}/stock [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	info, err := h.uc.Stock(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductoID:  info.ProductoID,
		StockActual: info.StockActual,
		StockMinimo: info.StockMinimo,
		EstadoStock: info.EstadoStock,
	})
}

// StockBajo godoc
// @Summary      Productos en o bajo el stock mínimo
// @Tags         productos
// @Produce      json
// @Success      200  {array}  dto.ProductoResponse
// @Router       /api/productos/stock-bajo [get]
func (h *ProductHandler) StockBajo(c *fiber.Ctx) error {
	products, err := h.uc.ListStockBajo(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.ProductoResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productoResponse(p))
	}
	return c.JSON(out)
}

func productoResponse(p *entity.Product) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:            p.ID,
		Nombre:        p.Nombre,
		CodigoInterno: p.CodigoInterno,
		CodigoBarras:  p.CodigoBarras,
		StockActual:   p.StockActual,
		StockMinimo:   p.StockMinimo,
		EstadoStock:   domkardex.EstadoStock(p.StockActual, p.StockMinimo),
		Activo:        p.Activo,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
