package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicavet/kardex-api/internal/domain"
	"github.com/clinicavet/kardex-api/internal/domain/entity"
	domkardex "github.com/clinicavet/kardex-api/internal/domain/kardex"
	"github.com/clinicavet/kardex-api/internal/domain/repository"
)

// ProductUseCase gestión del catálogo de productos. El catálogo nunca toca
// stock_actual directamente: los productos nacen con stock cero y solo el
// motor del kardex lo mueve.
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso de catálogo.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// CrearInput datos para crear un producto.
type CrearInput struct {
	Nombre        string
	CodigoInterno string
	CodigoBarras  string
	StockMinimo   int64
}

// Crear registra un producto nuevo con stock cero.
func (uc *ProductUseCase) Crear(ctx context.Context, input CrearInput) (*entity.Product, error) {
	if input.Nombre == "" || input.CodigoInterno == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.StockMinimo < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Nombre:        input.Nombre,
		CodigoInterno: input.CodigoInterno,
		CodigoBarras:  input.CodigoBarras,
		StockActual:   0,
		StockMinimo:   input.StockMinimo,
		Activo:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List lista productos; con soloActivos=true omite los desactivados.
func (uc *ProductUseCase) List(ctx context.Context, soloActivos bool) ([]*entity.Product, error) {
	return uc.productRepo.List(soloActivos)
}

// ActualizarInput campos editables de un producto. stock_actual queda fuera
// a propósito.
type ActualizarInput struct {
	Nombre       string
	CodigoBarras string
	StockMinimo  int64
}

// Actualizar modifica nombre, código de barras y umbral mínimo.
func (uc *ProductUseCase) Actualizar(ctx context.Context, id string, input ActualizarInput) (*entity.Product, error) {
	if input.Nombre == "" || input.StockMinimo < 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	product.Nombre = input.Nombre
	product.CodigoBarras = input.CodigoBarras
	product.StockMinimo = input.StockMinimo
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Desactivar marca el producto como inactivo (soft delete). El historial del
// kardex del producto se conserva intacto.
func (uc *ProductUseCase) Desactivar(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.productRepo.Deactivate(id)
}

// StockInfo lectura de stock con el estado frente al mínimo.
type StockInfo struct {
	ProductoID  string
	StockActual int64
	StockMinimo int64
	EstadoStock string
}

// Stock devuelve stock_actual y stock_minimo de un producto para el badge
// de alerta del front-end.
func (uc *ProductUseCase) Stock(ctx context.Context, id string) (*StockInfo, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return &StockInfo{
		ProductoID:  product.ID,
		StockActual: product.StockActual,
		StockMinimo: product.StockMinimo,
		EstadoStock: domkardex.EstadoStock(product.StockActual, product.StockMinimo),
	}, nil
}

// ListStockBajo devuelve los productos activos en o por debajo del mínimo,
// para la lista de alertas de reposición.
func (uc *ProductUseCase) ListStockBajo(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.ListBajoMinimo()
}
