// Package testutil provee dobles en memoria de los puertos de persistencia
// para las pruebas de casos de uso y handlers, incluyendo un TxRunner con
// semántica de rollback por snapshot: si el callback falla, el estado vuelve
// exactamente al anterior, igual que una transacción real.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
)

// ErrInfra error de infraestructura inyectable para probar rollbacks.
var ErrInfra = errors.New("fallo de infraestructura simulado")

// ErrFKViolada réplica de una violación de clave foránea (SQLSTATE 23503):
// enlazar anulado_por a un movimiento que aún no existe debe fallar, igual
// que en PostgreSQL.
var ErrFKViolada = errors.New("violación de clave foránea simulada")

// MemStore estado compartido de los repositorios en memoria.
type MemStore struct {
	mu   sync.Mutex
	data *storeData

	// FailCreateMovement fuerza un error de infraestructura en el próximo
	// Create de movimiento, para verificar que la transacción revierte todo.
	FailCreateMovement bool
}

type storeData struct {
	products  map[string]*entity.Product
	movements map[string]*entity.Movement
	order     []string // IDs de movimientos en orden de inserción
	seq       int64
}

// NewMemStore construye un almacenamiento vacío.
func NewMemStore() *MemStore {
	return &MemStore{data: &storeData{
		products:  make(map[string]*entity.Product),
		movements: make(map[string]*entity.Movement),
	}}
}

// Products devuelve la vista ProductRepository del almacenamiento.
func (s *MemStore) Products() repository.ProductRepository {
	return &memProductRepo{s: s}
}

// Movements devuelve la vista MovementRepository del almacenamiento.
func (s *MemStore) Movements() repository.MovementRepository {
	return &memMovementRepo{s: s}
}

// Run implementa kardex.TxRunner: toma un snapshot, ejecuta fn y si falla
// restaura el estado previo completo.
func (s *MemStore) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&memMovementRepo{s: s}, &memProductRepo{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// SeedProduct inserta un producto directamente, sin pasar por el caso de uso.
func (s *MemStore) SeedProduct(p *entity.Product) {
	cp := *p
	s.data.products[cp.ID] = &cp
}

// CountMovements devuelve cuántas líneas tiene el kardex.
func (s *MemStore) CountMovements() int {
	return len(s.data.movements)
}

func (d *storeData) clone() *storeData {
	cp := &storeData{
		products:  make(map[string]*entity.Product, len(d.products)),
		movements: make(map[string]*entity.Movement, len(d.movements)),
		order:     append([]string(nil), d.order...),
		seq:       d.seq,
	}
	for id, p := range d.products {
		c := *p
		cp.products[id] = &c
	}
	for id, m := range d.movements {
		c := *m
		cp.movements[id] = &c
	}
	return cp
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type memProductRepo struct {
	s *MemStore
}

func (r *memProductRepo) Create(product *entity.Product) error {
	for _, p := range r.s.data.products {
		if p.CodigoInterno == product.CodigoInterno {
			return domain.ErrDuplicado
		}
	}
	cp := *product
	r.s.data.products[cp.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *memProductRepo) Update(product *entity.Product) error {
	p, ok := r.s.data.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Nombre = product.Nombre
	p.CodigoBarras = product.CodigoBarras
	p.StockMinimo = product.StockMinimo
	p.UpdatedAt = product.UpdatedAt
	return nil
}

func (r *memProductRepo) UpdateStock(id string, stockActual int64) error {
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.ErrProductoNoEncontrado
	}
	p.StockActual = stockActual
	return nil
}

func (r *memProductRepo) List(soloActivos bool) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.s.data.products {
		if soloActivos && !p.Activo {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Nombre < list[j].Nombre })
	return list, nil
}

func (r *memProductRepo) ListBajoMinimo() ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.s.data.products {
		if p.Activo && p.StockActual <= p.StockMinimo {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		di := list[i].StockActual - list[i].StockMinimo
		dj := list[j].StockActual - list[j].StockMinimo
		if di != dj {
			return di < dj
		}
		return list[i].Nombre < list[j].Nombre
	})
	return list, nil
}

func (r *memProductRepo) Deactivate(id string) error {
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Activo = false
	return nil
}

// ── MovementRepository ────────────────────────────────────────────────────────

type memMovementRepo struct {
	s *MemStore
}

func (r *memMovementRepo) Create(movement *entity.Movement) error {
	if r.s.FailCreateMovement {
		r.s.FailCreateMovement = false
		return ErrInfra
	}
	r.s.data.seq++
	movement.Consecutivo = r.s.data.seq
	cp := *movement
	r.s.data.movements[cp.ID] = &cp
	r.s.data.order = append(r.s.data.order, cp.ID)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.Movement, error) {
	m, ok := r.s.data.movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMovementRepo) GetForUpdate(id string) (*entity.Movement, error) {
	return r.GetByID(id)
}

func (r *memMovementRepo) MarkAnulado(id, anuladoPor string) error {
	m, ok := r.s.data.movements[id]
	if !ok {
		return domain.ErrNotFound
	}
	if m.Estado != entity.MovementEstadoActivo {
		return domain.ErrMovimientoYaAnulado
	}
	// Misma integridad referencial que la FK anulado_por en PostgreSQL:
	// el compensatorio debe existir antes de enlazarlo.
	if _, ok := r.s.data.movements[anuladoPor]; !ok {
		return fmt.Errorf("anulado_por %s: %w", anuladoPor, ErrFKViolada)
	}
	m.Estado = entity.MovementEstadoAnulado
	m.AnuladoPor = anuladoPor
	return nil
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*repository.MovementConProducto, int64, error) {
	var matched []*repository.MovementConProducto
	// Del más reciente al más antiguo.
	for i := len(r.s.data.order) - 1; i >= 0; i-- {
		m := r.s.data.movements[r.s.data.order[i]]
		if filter.ProductoID != "" && m.ProductoID != filter.ProductoID {
			continue
		}
		nombre := ""
		if p, ok := r.s.data.products[m.ProductoID]; ok {
			nombre = p.Nombre
		}
		if filter.Texto != "" {
			detalle := domkardex.NormalizarBusqueda(m.Detalle)
			nombreNorm := domkardex.NormalizarBusqueda(nombre)
			if !strings.Contains(detalle, filter.Texto) && !strings.Contains(nombreNorm, filter.Texto) {
				continue
			}
		}
		cp := *m
		matched = append(matched, &repository.MovementConProducto{Movement: cp, ProductoNombre: nombre})
	}

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memMovementRepo) ListByProduct(productoID string) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for i := len(r.s.data.order) - 1; i >= 0; i-- {
		m := r.s.data.movements[r.s.data.order[i]]
		if m.ProductoID == productoID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}
