package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinicavet/kardex-api/internal/application/dto"
	"github.com/clinicavet/kardex-api/internal/application/kardex"
	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
)

// KardexHandler maneja las peticiones HTTP del kardex de inventario.
type KardexHandler struct {
	registerUC *kardex.RegisterMovementUseCase
	reverseUC  *kardex.ReverseMovementUseCase
	queryUC    *kardex.QueryUseCase
}

// NewKardexHandler construye el handler.
func NewKardexHandler(
	registerUC *kardex.RegisterMovementUseCase,
	reverseUC *kardex.ReverseMovementUseCase,
	queryUC *kardex.QueryUseCase,
) *KardexHandler {
	return &KardexHandler{registerUC: registerUC, reverseUC: reverseUC, queryUC: queryUC}
}

// RegistrarMovimiento godoc
// @Summary      Registrar movimiento del kardex
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegistrarMovimientoRequest  true  "tipo (ENTRADA|SALIDA), producto_id, cantidad, detalle, usuario"
// @Success      201   {object}  dto.MovimientoCreadoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kardex/movimientos [post]
func (h *KardexHandler) RegistrarMovimiento(c *fiber.Ctx) error {
	var in dto.RegistrarMovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: " + err.Error()})
	}

	result, err := h.registerUC.Register(c.Context(), kardex.MovimientoInput{
		ProductoID: in.ProductoID,
		Tipo:       in.Tipo,
		Cantidad:   in.Cantidad,
		Detalle:    in.Detalle,
		Usuario:    in.Usuario,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movimientoCreadoResponse(result))
}

// AnularMovimiento godoc
// @Summary      Anular un movimiento del kardex
// @Description  Marca el movimiento como ANULADO y crea la línea compensatoria
//
//	del tipo opuesto. Distingue "ya anulado" de "stock insuficiente
//	para anular" de "no encontrado".
//
// @Tags         kardex
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento a anular"
// @Param        body  body  dto.AnularMovimientoRequest  false  "usuario"
// @Success      200   {object}  dto.MovimientoCreadoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kardex/movimientos/{id}/anular [post]
func (h *KardexHandler) AnularMovimiento(c *fiber.Ctx) error {
	var in dto.AnularMovimientoRequest
	// Body opcional: solo trae el usuario que anula.
	_ = c.BodyParser(&in)

	result, err := h.reverseUC.Anular(c.Context(), c.Params("id"), in.Usuario)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(movimientoCreadoResponse(result))
}

// ListarMovimientos godoc
// @Summary      Listar el kardex
// @Description  Movimientos del más reciente al más antiguo, con filtro
//
//	opcional por producto y búsqueda libre (insensible a
//	mayúsculas y tildes) sobre nombre de producto y detalle.
//
// @Tags         kardex
// @Produce      json
// @Param        producto_id  query  string  false  "Filtrar por producto"
// @Param        q            query  string  false  "Búsqueda libre"
// @Param        limit        query  int     false  "Tamaño de página (máx. 100)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ListaMovimientosResponse
// @Router       /api/kardex/movimientos [get]
func (h *KardexHandler) ListarMovimientos(c *fiber.Ctx) error {
	movs, total, err := h.queryUC.Listar(c.Context(), kardex.ConsultaMovimientos{
		ProductoID: c.Query("producto_id"),
		Texto:      c.Query("q"),
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	})
	if err != nil {
		return domainError(c, err)
	}

	out := dto.ListaMovimientosResponse{
		Total:       total,
		Movimientos: make([]dto.MovimientoResponse, 0, len(movs)),
	}
	for _, m := range movs {
		out.Movimientos = append(out.Movimientos, movimientoResponse(m))
	}
	return c.JSON(out)
}

func movimientoResponse(m *repository.MovementConProducto) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:             m.ID,
		Consecutivo:    m.Consecutivo,
		Fecha:          m.CreatedAt,
		ProductoID:     m.ProductoID,
		ProductoNombre: m.ProductoNombre,
		Tipo:           m.Tipo,
		Cantidad:       m.Cantidad,
		Detalle:        m.Detalle,
		Usuario:        m.Usuario,
		Estado:         m.Estado,
		AnulaA:         m.AnulaA,
		AnuladoPor:     m.AnuladoPor,
	}
}

func movimientoCreadoResponse(result *kardex.MovimientoResult) dto.MovimientoCreadoResponse {
	mov := result.Movimiento
	return dto.MovimientoCreadoResponse{
		MovimientoResponse: dto.MovimientoResponse{
			ID:             mov.ID,
			Consecutivo:    mov.Consecutivo,
			Fecha:          mov.CreatedAt,
			ProductoID:     mov.ProductoID,
			ProductoNombre: result.ProductoNombre,
			Tipo:           mov.Tipo,
			Cantidad:       mov.Cantidad,
			Detalle:        mov.Detalle,
			Usuario:        mov.Usuario,
			Estado:         mov.Estado,
			AnulaA:         mov.AnulaA,
		},
		StockResultante: result.StockResultante,
		EstadoStock:     result.EstadoStock,
	}
}

// domainError mapea los errores de dominio a códigos HTTP. Cualquier otro
// error se trata como fallo de infraestructura (500, reintentar sin cambios).
func domainError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrCantidadInvalida:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CANTIDAD_INVALIDA", Message: "la cantidad debe ser mayor que cero"})
	case domain.ErrProductoNoEncontrado:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCTO_NO_ENCONTRADO", Message: "producto no encontrado o inactivo"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case domain.ErrStockInsuficiente:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STOCK_INSUFICIENTE", Message: "stock insuficiente"})
	case domain.ErrMovimientoYaAnulado:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "YA_ANULADO", Message: "el movimiento ya fue anulado"})
	case domain.ErrNoSePuedeAnular:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_SE_PUEDE_ANULAR", Message: "no se puede anular: stock ya consumido"})
	case domain.ErrAnulacionDeAnulacion:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_SE_PUEDE_ANULAR", Message: "un movimiento de anulación no puede anularse"})
	case domain.ErrDuplicado:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICADO", Message: "recurso duplicado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
