package kardex

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
	"github.com/clinicavet/kardex-api/pkg/logger"
)

// MovimientoInput entrada para registrar un movimiento del kardex.
type MovimientoInput struct {
	ProductoID string
	Tipo       string // ENTRADA o SALIDA
	Cantidad   int64
	Detalle    string
	Usuario    string // vacío si lo genera el sistema
}

// MovimientoResult movimiento persistido junto con el stock resultante y su
// estado frente al mínimo del producto.
type MovimientoResult struct {
	Movimiento      *entity.Movement
	ProductoNombre  string
	StockResultante int64
	EstadoStock     string
}

// RegisterMovementUseCase registra movimientos del kardex de forma
// transaccional, con bloqueo de fila sobre el producto (SELECT FOR UPDATE)
// para serializar el check-then-write de stock por producto.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, log *logger.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, log: log}
}

// Register valida la petición, bloquea la fila del producto, aplica el delta
// con la verificación de no-negatividad y persiste la línea del kardex.
// Un rechazo no deja rastro: la transacción se revierte completa.
func (uc *RegisterMovementUseCase) Register(ctx context.Context, input MovimientoInput) (*MovimientoResult, error) {
	if input.Tipo != entity.MovementTipoEntrada && input.Tipo != entity.MovementTipoSalida {
		return nil, domain.ErrInvalidInput
	}
	if input.ProductoID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Cantidad <= 0 {
		return nil, domain.ErrCantidadInvalida
	}

	var result *MovimientoResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto: sección crítica por producto.
		product, err := productRepo.GetForUpdate(input.ProductoID)
		if err != nil {
			return err
		}
		if product == nil || !product.Activo {
			return domain.ErrProductoNoEncontrado
		}

		nuevoStock, err := domkardex.Aplicar(product.StockActual, input.Tipo, input.Cantidad)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(product.ID, nuevoStock); err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:         uuid.New().String(),
			ProductoID: product.ID,
			Tipo:       input.Tipo,
			Cantidad:   input.Cantidad,
			Detalle:    input.Detalle,
			Usuario:    input.Usuario,
			Estado:     entity.MovementEstadoActivo,
			CreatedAt:  time.Now(),
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		result = &MovimientoResult{
			Movimiento:      mov,
			ProductoNombre:  product.Nombre,
			StockResultante: nuevoStock,
			EstadoStock:     domkardex.EstadoStock(nuevoStock, product.StockMinimo),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Línea de auditoría por cada registro exitoso.
	uc.log.Info().
		Str("evento", "movimiento_registrado").
		Str("movimiento_id", result.Movimiento.ID).
		Int64("consecutivo", result.Movimiento.Consecutivo).
		Str("producto_id", input.ProductoID).
		Str("tipo", input.Tipo).
		Int64("cantidad", input.Cantidad).
		Int64("stock_resultante", result.StockResultante).
		Str("estado_stock", result.EstadoStock).
		Str("usuario", input.Usuario).
		Msg("kardex: movimiento registrado")

	return result, nil
}
