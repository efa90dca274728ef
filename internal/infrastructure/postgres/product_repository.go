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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, nombre, codigo_interno, codigo_barras, stock_actual, stock_minimo, activo, created_at, updated_at`

// Create persiste un producto nuevo. El stock inicia en 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO productos (id, nombre, nombre_busqueda, codigo_interno, codigo_barras, stock_actual, stock_minimo, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	codigoBarras := (*string)(nil)
	if product.CodigoBarras != "" {
		codigoBarras = &product.CodigoBarras
	}
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Nombre, domkardex.NormalizarBusqueda(product.Nombre),
		product.CodigoInterno, codigoBarras,
		product.StockActual, product.StockMinimo, product.Activo,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get producto")
}

// GetForUpdate obtiene el producto y bloquea su fila (SELECT FOR UPDATE).
// Serializa el check-then-write de stock por producto; filas de productos
// distintos no compiten.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get producto for update")
}

// Update modifica los campos editables del catálogo. No toca stock_actual.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE productos
		SET nombre = $2, nombre_busqueda = $3, codigo_barras = $4, stock_minimo = $5, updated_at = $6
		WHERE id = $1`
	codigoBarras := (*string)(nil)
	if product.CodigoBarras != "" {
		codigoBarras = &product.CodigoBarras
	}
	tag, err := r.q.Exec(context.Background(), query,
		product.ID, product.Nombre, domkardex.NormalizarBusqueda(product.Nombre),
		codigoBarras, product.StockMinimo, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock persiste la proyección de stock calculada por el kardex.
// Debe ejecutarse dentro de la misma transacción que escribe el movimiento.
func (r *ProductRepo) UpdateStock(id string, stockActual int64) error {
	query := `UPDATE productos SET stock_actual = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, stockActual)
	if err != nil {
		return fmt.Errorf("update stock producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductoNoEncontrado
	}
	return nil
}

// List lista productos ordenados por nombre; con soloActivos omite los desactivados.
func (r *ProductRepo) List(soloActivos bool) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos`
	if soloActivos {
		query += ` WHERE activo`
	}
	query += ` ORDER BY nombre`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListBajoMinimo devuelve los productos activos con stock en o bajo el mínimo,
// los más deficitarios primero.
func (r *ProductRepo) ListBajoMinimo() ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM productos
		WHERE activo AND stock_actual <= stock_minimo
		ORDER BY stock_actual - stock_minimo, nombre`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list productos bajo minimo: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Deactivate marca el producto como inactivo (soft delete).
func (r *ProductRepo) Deactivate(id string) error {
	query := `UPDATE productos SET activo = FALSE, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("deactivate producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	var codigoBarras *string
	err := row.Scan(
		&p.ID, &p.Nombre, &p.CodigoInterno, &codigoBarras,
		&p.StockActual, &p.StockMinimo, &p.Activo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if codigoBarras != nil {
		p.CodigoBarras = *codigoBarras
	}
	return &p, nil
}

func (r *ProductRepo) scanAll(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var codigoBarras *string
		if err := rows.Scan(&p.ID, &p.Nombre, &p.CodigoInterno, &codigoBarras,
			&p.StockActual, &p.StockMinimo, &p.Activo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		if codigoBarras != nil {
			p.CodigoBarras = *codigoBarras
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
