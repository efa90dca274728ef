package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
// Las líneas solo se insertan; la única actualización permitida es la de
// MarkAnulado sobre estado/anulado_por.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del kardex. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, consecutivo, producto_id, tipo, cantidad, detalle, usuario, estado, anula_a, anulado_por, created_at`

// Create persiste una línea del kardex y completa el consecutivo y la fecha
// asignados por la base de datos.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO movimientos (id, producto_id, tipo, cantidad, detalle, detalle_busqueda, usuario, estado, anula_a, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING consecutivo, created_at`
	usuario := (*string)(nil)
	if movement.Usuario != "" {
		usuario = &movement.Usuario
	}
	anulaA := (*string)(nil)
	if movement.AnulaA != "" {
		anulaA = &movement.AnulaA
	}
	err := r.q.QueryRow(context.Background(), query,
		movement.ID, movement.ProductoID, movement.Tipo, movement.Cantidad,
		movement.Detalle, domkardex.NormalizarBusqueda(movement.Detalle),
		usuario, movement.Estado, anulaA, movement.CreatedAt,
	).Scan(&movement.Consecutivo, &movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movimientos WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get movimiento")
}

// GetForUpdate obtiene el movimiento y bloquea su fila (SELECT FOR UPDATE)
// para decidir la anulación bajo exclusión.
func (r *MovementRepo) GetForUpdate(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movimientos WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get movimiento for update")
}

// MarkAnulado pasa el movimiento de ACTIVO a ANULADO y enlaza el
// compensatorio. La condición estado = 'ACTIVO' hace la transición
// idempotentemente segura: una segunda anulación no afecta filas.
func (r *MovementRepo) MarkAnulado(id, anuladoPor string) error {
	query := `
		UPDATE movimientos SET estado = $3, anulado_por = $2
		WHERE id = $1 AND estado = $4`
	tag, err := r.q.Exec(context.Background(), query,
		id, anuladoPor, entity.MovementEstadoAnulado, entity.MovementEstadoActivo)
	if err != nil {
		return fmt.Errorf("mark movimiento anulado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrMovimientoYaAnulado
	}
	return nil
}

// List lista el kardex del más reciente al más antiguo (por consecutivo),
// con filtros opcionales de producto y texto libre, y el total sin paginar.
// El texto debe venir ya normalizado; se compara contra las columnas de
// búsqueda normalizadas del detalle y del nombre del producto.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*repository.MovementConProducto, int64, error) {
	where := ``
	args := []any{}
	pos := 1
	if filter.ProductoID != "" {
		where += fmt.Sprintf(" AND m.producto_id = $%d", pos)
		args = append(args, filter.ProductoID)
		pos++
	}
	if filter.Texto != "" {
		where += fmt.Sprintf(" AND (m.detalle_busqueda LIKE '%%' || $%d || '%%' OR p.nombre_busqueda LIKE '%%' || $%d || '%%')", pos, pos)
		args = append(args, filter.Texto)
		pos++
	}

	countQuery := `
		SELECT count(*)
		FROM movimientos m JOIN productos p ON p.id = m.producto_id
		WHERE TRUE` + where
	var total int64
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movimientos: %w", err)
	}

	query := `
		SELECT m.id, m.consecutivo, m.producto_id, p.nombre, m.tipo, m.cantidad, m.detalle, m.usuario, m.estado, m.anula_a, m.anulado_por, m.created_at
		FROM movimientos m JOIN productos p ON p.id = m.producto_id
		WHERE TRUE` + where +
		fmt.Sprintf(" ORDER BY m.consecutivo DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	var list []*repository.MovementConProducto
	for rows.Next() {
		var mp repository.MovementConProducto
		var usuario, anulaA, anuladoPor *string
		if err := rows.Scan(&mp.ID, &mp.Consecutivo, &mp.ProductoID, &mp.ProductoNombre,
			&mp.Tipo, &mp.Cantidad, &mp.Detalle, &usuario, &mp.Estado,
			&anulaA, &anuladoPor, &mp.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan movimiento: %w", err)
		}
		fillOptional(&mp.Movement, usuario, anulaA, anuladoPor)
		list = append(list, &mp)
	}
	return list, total, rows.Err()
}

// ListByProduct devuelve todos los movimientos de un producto, del más
// reciente al más antiguo. Lo usa la verificación de replay del stock.
func (r *MovementRepo) ListByProduct(productoID string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movimientos WHERE producto_id = $1
		ORDER BY consecutivo DESC`
	rows, err := r.q.Query(context.Background(), query, productoID)
	if err != nil {
		return nil, fmt.Errorf("list movimientos por producto: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var usuario, anulaA, anuladoPor *string
		if err := rows.Scan(&m.ID, &m.Consecutivo, &m.ProductoID, &m.Tipo, &m.Cantidad,
			&m.Detalle, &usuario, &m.Estado, &anulaA, &anuladoPor, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		fillOptional(&m, usuario, anulaA, anuladoPor)
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MovementRepo) scanOne(row pgx.Row, op string) (*entity.Movement, error) {
	var m entity.Movement
	var usuario, anulaA, anuladoPor *string
	err := row.Scan(&m.ID, &m.Consecutivo, &m.ProductoID, &m.Tipo, &m.Cantidad,
		&m.Detalle, &usuario, &m.Estado, &anulaA, &anuladoPor, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fillOptional(&m, usuario, anulaA, anuladoPor)
	return &m, nil
}

func fillOptional(m *entity.Movement, usuario, anulaA, anuladoPor *string) {
	if usuario != nil {
		m.Usuario = *usuario
	}
	if anulaA != nil {
		m.AnulaA = *anulaA
	}
	if anuladoPor != nil {
		m.AnuladoPor = *anuladoPor
	}
}
