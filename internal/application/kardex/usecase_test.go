package kardex_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkardex "github.com/clinicavet/kardex-api/internal/application/kardex"
	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/testutil"
	"github.com/clinicavet/kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *testutil.MemStore
	register *appkardex.RegisterMovementUseCase
	reverse  *appkardex.ReverseMovementUseCase
	producto *entity.Product
}

// newFixture crea un producto y lo deja con el stock inicial indicado
// registrando una ENTRADA a través del caso de uso, para que el invariante
// de replay se cumpla desde el arranque.
func newFixture(t *testing.T, stockInicial, stockMinimo int64) *fixture {
	t.Helper()

	store := testutil.NewMemStore()
	log := logger.Nop()
	f := &fixture{
		store:    store,
		register: appkardex.NewRegisterMovementUseCase(store, log),
		reverse:  appkardex.NewReverseMovementUseCase(store, log),
		producto: &entity.Product{
			ID:            uuid.New().String(),
			Nombre:        "Amoxicilina 500mg",
			CodigoInterno: "AMX-500",
			StockMinimo:   stockMinimo,
			Activo:        true,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		},
	}
	store.SeedProduct(f.producto)

	if stockInicial > 0 {
		_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
			ProductoID: f.producto.ID,
			Tipo:       entity.MovementTipoEntrada,
			Cantidad:   stockInicial,
			Detalle:    "stock inicial",
		})
		require.NoError(t, err, "la carga de stock inicial no debe fallar")
	}
	return f
}

func (f *fixture) registrar(t *testing.T, tipo string, cantidad int64) *appkardex.MovimientoResult {
	t.Helper()
	result, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID,
		Tipo:       tipo,
		Cantidad:   cantidad,
		Usuario:    "recepcion",
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) stockActual(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(f.producto.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockActual
}

// verificarReplay comprueba el invariante central: el stock almacenado debe
// coincidir con el recalculado desde los movimientos del producto.
func (f *fixture) verificarReplay(t *testing.T) {
	t.Helper()
	movs, err := f.store.Movements().ListByProduct(f.producto.ID)
	require.NoError(t, err)
	assert.Equal(t, f.stockActual(t), domkardex.Replay(movs),
		"el stock almacenado debe ser reproducible desde el kardex")
}

// ──────────────────────────────────────────────────────────────────────────────
// Registrar movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_EntradaYSalidaActualizanStock(t *testing.T) {
	f := newFixture(t, 0, 0)

	res := f.registrar(t, entity.MovementTipoEntrada, 10)
	assert.Equal(t, int64(10), res.StockResultante)
	assert.Equal(t, entity.MovementEstadoActivo, res.Movimiento.Estado)
	assert.NotEmpty(t, res.Movimiento.ID)
	assert.Positive(t, res.Movimiento.Consecutivo)

	res = f.registrar(t, entity.MovementTipoSalida, 4)
	assert.Equal(t, int64(6), res.StockResultante)
	f.verificarReplay(t)
}

func TestRegister_ConsecutivoMonotono(t *testing.T) {
	f := newFixture(t, 0, 0)

	r1 := f.registrar(t, entity.MovementTipoEntrada, 1)
	r2 := f.registrar(t, entity.MovementTipoEntrada, 1)
	r3 := f.registrar(t, entity.MovementTipoEntrada, 1)
	assert.Less(t, r1.Movimiento.Consecutivo, r2.Movimiento.Consecutivo)
	assert.Less(t, r2.Movimiento.Consecutivo, r3.Movimiento.Consecutivo)
}

func TestRegister_CantidadNoPositiva_Rechazada(t *testing.T) {
	f := newFixture(t, 10, 0)

	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: entity.MovementTipoEntrada, Cantidad: 0,
	})
	assert.ErrorIs(t, err, domain.ErrCantidadInvalida)

	_, err = f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: entity.MovementTipoSalida, Cantidad: -3,
	})
	assert.ErrorIs(t, err, domain.ErrCantidadInvalida)
}

func TestRegister_TipoDesconocido_Rechazado(t *testing.T) {
	f := newFixture(t, 10, 0)
	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: "AJUSTE", Cantidad: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_ProductoInexistente_Rechazado(t *testing.T) {
	f := newFixture(t, 0, 0)
	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: uuid.New().String(), Tipo: entity.MovementTipoEntrada, Cantidad: 1,
	})
	assert.ErrorIs(t, err, domain.ErrProductoNoEncontrado)
}

func TestRegister_ProductoInactivo_Rechazado(t *testing.T) {
	f := newFixture(t, 5, 0)
	require.NoError(t, f.store.Products().Deactivate(f.producto.ID))

	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: entity.MovementTipoEntrada, Cantidad: 1,
	})
	assert.ErrorIs(t, err, domain.ErrProductoNoEncontrado)
}

// Propiedad: un rechazo no deja rastro. Tras una SALIDA mayor que el stock
// no debe existir movimiento nuevo y el stock queda intacto.
func TestRegister_RechazoNoDejaRastro(t *testing.T) {
	f := newFixture(t, 5, 0)
	movimientosAntes := f.store.CountMovements()

	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: entity.MovementTipoSalida, Cantidad: 8,
	})
	assert.ErrorIs(t, err, domain.ErrStockInsuficiente)

	assert.Equal(t, movimientosAntes, f.store.CountMovements(),
		"un rechazo no debe agregar líneas al kardex")
	assert.Equal(t, int64(5), f.stockActual(t), "el stock no debe cambiar")
	f.verificarReplay(t)
}

// Propiedad: ninguna secuencia de operaciones aceptadas produce stock negativo.
func TestRegister_StockNuncaNegativo(t *testing.T) {
	f := newFixture(t, 3, 0)

	operaciones := []struct {
		tipo     string
		cantidad int64
	}{
		{entity.MovementTipoSalida, 2},
		{entity.MovementTipoSalida, 2}, // rechazada: dejaría -1
		{entity.MovementTipoEntrada, 1},
		{entity.MovementTipoSalida, 2},
		{entity.MovementTipoSalida, 1}, // rechazada: dejaría -1
	}
	for _, op := range operaciones {
		_, _ = f.register.Register(context.Background(), appkardex.MovimientoInput{
			ProductoID: f.producto.ID, Tipo: op.tipo, Cantidad: op.cantidad,
		})
		assert.GreaterOrEqual(t, f.stockActual(t), int64(0))
	}
	assert.Equal(t, int64(0), f.stockActual(t))
	f.verificarReplay(t)
}

// Señal informativa: el umbral mínimo nunca bloquea, solo clasifica.
func TestRegister_EstadoStockInformativo(t *testing.T) {
	f := newFixture(t, 10, 5)

	res := f.registrar(t, entity.MovementTipoSalida, 4)
	assert.Equal(t, domkardex.EstadoStockOK, res.EstadoStock)

	res = f.registrar(t, entity.MovementTipoSalida, 1)
	assert.Equal(t, domkardex.EstadoStockEnMinimo, res.EstadoStock)

	// Seguir bajando del mínimo está permitido: el umbral es solo aviso.
	res = f.registrar(t, entity.MovementTipoSalida, 2)
	assert.Equal(t, domkardex.EstadoStockBajo, res.EstadoStock)
	assert.Equal(t, int64(3), res.StockResultante)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anular movimientos
// ──────────────────────────────────────────────────────────────────────────────

// Propiedad: ida y vuelta. Registrar una ENTRADA de Q y anularla devuelve el
// stock al valor previo, el original queda ANULADO y existe exactamente una
// SALIDA compensatoria de Q enlazada.
func TestAnular_IdaYVuelta(t *testing.T) {
	f := newFixture(t, 10, 0)

	res := f.registrar(t, entity.MovementTipoEntrada, 7)
	require.Equal(t, int64(17), res.StockResultante)

	comp, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	require.NoError(t, err)

	assert.Equal(t, int64(10), comp.StockResultante, "el stock debe volver al valor previo")
	assert.Equal(t, entity.MovementTipoSalida, comp.Movimiento.Tipo)
	assert.Equal(t, int64(7), comp.Movimiento.Cantidad)
	assert.Equal(t, res.Movimiento.ID, comp.Movimiento.AnulaA)
	assert.Contains(t, comp.Movimiento.Detalle, "ANULACIÓN")

	original, err := f.store.Movements().GetByID(res.Movimiento.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementEstadoAnulado, original.Estado)
	assert.Equal(t, comp.Movimiento.ID, original.AnuladoPor)
	f.verificarReplay(t)
}

// Propiedad: a lo sumo una anulación. La segunda llamada falla YA_ANULADO.
func TestAnular_SegundaVezRechazada(t *testing.T) {
	f := newFixture(t, 10, 0)
	res := f.registrar(t, entity.MovementTipoSalida, 4)

	_, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	require.NoError(t, err)

	_, err = f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrMovimientoYaAnulado)
	assert.Equal(t, int64(10), f.stockActual(t), "la segunda anulación no debe tocar el stock")
	f.verificarReplay(t)
}

func TestAnular_MovimientoInexistente(t *testing.T) {
	f := newFixture(t, 0, 0)
	_, err := f.reverse.Anular(context.Background(), uuid.New().String(), "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Anular una ENTRADA ya consumida por salidas posteriores debe fallar sin
// efectos: "no se puede anular: stock ya consumido", nunca recorte a cero.
func TestAnular_EntradaConsumida_SinEfectos(t *testing.T) {
	f := newFixture(t, 0, 0)

	entrada := f.registrar(t, entity.MovementTipoEntrada, 20)
	f.registrar(t, entity.MovementTipoSalida, 15) // stock queda en 5

	movimientosAntes := f.store.CountMovements()
	_, err := f.reverse.Anular(context.Background(), entrada.Movimiento.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrNoSePuedeAnular)

	assert.Equal(t, int64(5), f.stockActual(t), "el stock no debe cambiar")
	assert.Equal(t, movimientosAntes, f.store.CountMovements())
	original, err := f.store.Movements().GetByID(entrada.Movimiento.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementEstadoActivo, original.Estado, "el original debe seguir ACTIVO")
	f.verificarReplay(t)
}

// La línea compensatoria debe insertarse antes de enlazar anulado_por: la
// FK de la base de datos exige que el destino exista al ejecutar el UPDATE.
// El almacenamiento de pruebas replica esa verificación, así que anular solo
// puede completarse si el orden de escritura es el correcto.
func TestAnular_InsertaCompensatorioAntesDeEnlazar(t *testing.T) {
	f := newFixture(t, 10, 0)
	res := f.registrar(t, entity.MovementTipoSalida, 4)

	comp, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	require.NoError(t, err, "con integridad referencial activa, el orden inverso fallaría")

	original, err := f.store.Movements().GetByID(res.Movimiento.ID)
	require.NoError(t, err)
	enlazado, err := f.store.Movements().GetByID(original.AnuladoPor)
	require.NoError(t, err)
	require.NotNil(t, enlazado, "anulado_por debe apuntar a una línea existente")
	assert.Equal(t, comp.Movimiento.ID, enlazado.ID)
}

// Un movimiento compensatorio no puede anularse a su vez.
func TestAnular_CompensatorioRechazado(t *testing.T) {
	f := newFixture(t, 10, 0)
	res := f.registrar(t, entity.MovementTipoSalida, 4)

	comp, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	require.NoError(t, err)

	_, err = f.reverse.Anular(context.Background(), comp.Movimiento.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrAnulacionDeAnulacion)
	assert.Equal(t, int64(10), f.stockActual(t))
}

// Todo-o-nada: si la línea compensatoria no puede persistirse, el cambio de
// estado y el stock deben revertirse completos.
func TestAnular_FalloDePersistencia_RevierteTodo(t *testing.T) {
	f := newFixture(t, 10, 0)
	res := f.registrar(t, entity.MovementTipoSalida, 4)
	require.Equal(t, int64(6), res.StockResultante)

	f.store.FailCreateMovement = true
	_, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	assert.ErrorIs(t, err, testutil.ErrInfra)

	original, getErr := f.store.Movements().GetByID(res.Movimiento.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.MovementEstadoActivo, original.Estado,
		"sin compensatorio no puede quedar un original anulado")
	assert.Empty(t, original.AnuladoPor)
	assert.Equal(t, int64(6), f.stockActual(t), "el stock debe revertirse")
	f.verificarReplay(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios completos del contrato
// ──────────────────────────────────────────────────────────────────────────────

// Producto con stock 10 y mínimo 5: salida de 7 (queda 3, BAJO), salida de 5
// rechazada, anulación de la primera salida devuelve el stock a 10.
func TestEscenario_SalidaAnulacionYReplay(t *testing.T) {
	f := newFixture(t, 10, 5)

	res := f.registrar(t, entity.MovementTipoSalida, 7)
	assert.Equal(t, int64(3), res.StockResultante)
	assert.Equal(t, domkardex.EstadoStockBajo, res.EstadoStock)

	_, err := f.register.Register(context.Background(), appkardex.MovimientoInput{
		ProductoID: f.producto.ID, Tipo: entity.MovementTipoSalida, Cantidad: 5,
	})
	assert.ErrorIs(t, err, domain.ErrStockInsuficiente)
	assert.Equal(t, int64(3), f.stockActual(t))

	comp, err := f.reverse.Anular(context.Background(), res.Movimiento.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(10), comp.StockResultante)
	assert.Equal(t, entity.MovementTipoEntrada, comp.Movimiento.Tipo)
	assert.Equal(t, int64(7), comp.Movimiento.Cantidad)
	assert.Equal(t, res.Movimiento.ID, comp.Movimiento.AnulaA)

	original, err := f.store.Movements().GetByID(res.Movimiento.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementEstadoAnulado, original.Estado)
	f.verificarReplay(t)
}

// Entrada de 20 sobre stock 0, luego salida de 15: anular la entrada
// requeriría stock -15 y debe fallar NO_SE_PUEDE_ANULAR.
func TestEscenario_AnularEntradaConStockConsumido(t *testing.T) {
	f := newFixture(t, 0, 0)

	entrada := f.registrar(t, entity.MovementTipoEntrada, 20)
	f.registrar(t, entity.MovementTipoSalida, 15)
	require.Equal(t, int64(5), f.stockActual(t))

	_, err := f.reverse.Anular(context.Background(), entrada.Movimiento.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrNoSePuedeAnular)
	assert.Equal(t, int64(5), f.stockActual(t))
	f.verificarReplay(t)
}
