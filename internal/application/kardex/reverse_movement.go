package kardex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
	"github.com/clinicavet/kardex-api/pkg/logger"
)

// ReverseMovementUseCase anula un movimiento del kardex a lo sumo una vez:
// restaura el stock con el delta inverso, marca el original como ANULADO y
// crea la línea compensatoria del tipo opuesto, todo en una transacción.
type ReverseMovementUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReverseMovementUseCase construye el caso de uso.
func NewReverseMovementUseCase(txRunner TxRunner, log *logger.Logger) *ReverseMovementUseCase {
	return &ReverseMovementUseCase{txRunner: txRunner, log: log}
}

// Anular revierte el movimiento indicado. Si el delta inverso dejaría el
// stock negativo (anular una ENTRADA ya consumida) aborta sin efectos y el
// original sigue ACTIVO. El movimiento original y su compensatorio quedan
// enlazados vía anula_a / anulado_por.
func (uc *ReverseMovementUseCase) Anular(ctx context.Context, movimientoID, usuario string) (*MovimientoResult, error) {
	if movimientoID == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *MovimientoResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del movimiento: la decisión "ya anulado" se toma
		// bajo exclusión, dos anulaciones concurrentes no pasan ambas.
		mov, err := movRepo.GetForUpdate(movimientoID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if !mov.EsActivo() {
			return domain.ErrMovimientoYaAnulado
		}
		if mov.AnulaA != "" {
			return domain.ErrAnulacionDeAnulacion
		}

		product, err := productRepo.GetForUpdate(mov.ProductoID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductoNoEncontrado
		}

		nuevoStock, err := domkardex.Revertir(product.StockActual, mov)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(product.ID, nuevoStock); err != nil {
			return err
		}

		detalle := fmt.Sprintf("ANULACIÓN del movimiento #%d", mov.Consecutivo)
		if mov.Detalle != "" {
			detalle += ": " + mov.Detalle
		}
		comp := &entity.Movement{
			ID:         uuid.New().String(),
			ProductoID: mov.ProductoID,
			Tipo:       tipoOpuesto(mov.Tipo),
			Cantidad:   mov.Cantidad,
			Detalle:    detalle,
			Usuario:    usuario,
			Estado:     entity.MovementEstadoActivo,
			AnulaA:     mov.ID,
			CreatedAt:  time.Now(),
		}
		// El compensatorio se inserta primero: anulado_por referencia su fila
		// y la FK se verifica al final de cada sentencia.
		if err := movRepo.Create(comp); err != nil {
			return err
		}
		if err := movRepo.MarkAnulado(mov.ID, comp.ID); err != nil {
			return err
		}

		result = &MovimientoResult{
			Movimiento:      comp,
			ProductoNombre:  product.Nombre,
			StockResultante: nuevoStock,
			EstadoStock:     domkardex.EstadoStock(nuevoStock, product.StockMinimo),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("evento", "movimiento_anulado").
		Str("movimiento_id", movimientoID).
		Str("compensatorio_id", result.Movimiento.ID).
		Str("producto_id", result.Movimiento.ProductoID).
		Int64("stock_resultante", result.StockResultante).
		Str("usuario", usuario).
		Msg("kardex: movimiento anulado")

	return result, nil
}

func tipoOpuesto(tipo string) string {
	if tipo == entity.MovementTipoEntrada {
		return entity.MovementTipoSalida
	}
	return entity.MovementTipoEntrada
}
