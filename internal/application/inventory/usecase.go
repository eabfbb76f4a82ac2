package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

const maxReasonLength = 255

// AdjustStockUseCase aplica cambios de existencias de forma transaccional: bloqueo de fila
// (SELECT FOR UPDATE), nuevo amount y movimiento en el libro confirmados juntos o ninguno.
type AdjustStockUseCase struct {
	txRunner     TxRunner
	cache        ports.Cache
	publisher    ports.LowStockPublisher
	metrics      ports.InventoryMetrics
	maxRetries   int
	retryBackoff time.Duration
	now          func() time.Time
}

// AdjustStockOptions dependencias opcionales del motor. Los campos nil usan implementaciones vacías.
type AdjustStockOptions struct {
	Cache        ports.Cache
	Publisher    ports.LowStockPublisher
	Metrics      ports.InventoryMetrics
	MaxRetries   int           // intentos totales ante domain.ErrConflict (mínimo 1)
	RetryBackoff time.Duration // espera inicial entre intentos
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(txRunner TxRunner, opts AdjustStockOptions) *AdjustStockUseCase {
	uc := &AdjustStockUseCase{
		txRunner:     txRunner,
		cache:        opts.Cache,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		now:          time.Now,
	}
	if uc.cache == nil {
		uc.cache = nopCache{}
	}
	if uc.publisher == nil {
		uc.publisher = nopPublisher{}
	}
	if uc.metrics == nil {
		uc.metrics = nopMetrics{}
	}
	if uc.maxRetries < 1 {
		uc.maxRetries = 1
	}
	if uc.retryBackoff <= 0 {
		uc.retryBackoff = 10 * time.Millisecond
	}
	return uc
}

// AdjustStockInput entrada del motor. Quantity es siempre la magnitud (> 0).
type AdjustStockInput struct {
	ProductID string
	Type      string // IN | OUT | ADJUST
	Quantity  int
	Reason    string
	UserID    string // actor opcional registrado en el movimiento
}

// Validate reúne todas las violaciones de la entrada.
func (in AdjustStockInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.ProductID) == "" {
		verr.Add("product_id", "es obligatorio")
	}
	if !entity.IsValidMovementType(in.Type) {
		verr.Add("type", "debe ser uno de IN, OUT, ADJUST")
	}
	switch {
	case in.Quantity <= 0:
		verr.Add("quantity", "debe ser mayor que cero")
	case in.Quantity > entity.MaxQuantity:
		verr.Add("quantity", fmt.Sprintf("debe ser menor o igual a %d", entity.MaxQuantity))
	}
	reason := strings.TrimSpace(in.Reason)
	switch {
	case reason == "":
		verr.Add("reason", "no puede estar vacío")
	case len([]rune(reason)) > maxReasonLength:
		verr.Add("reason", fmt.Sprintf("no puede superar %d caracteres", maxReasonLength))
	}
	return verr.OrNil()
}

// AdjustStock valida, aplica el movimiento bajo bloqueo de fila y confirma amount + movimiento
// en una sola transacción. Ante domain.ErrConflict reintenta la transacción completa.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*dto.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		uc.metrics.AdjustmentRejected(in.Type, "VALIDATION")
		return nil, err
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Reason = strings.TrimSpace(in.Reason)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.retryBackoff
	b.MaxInterval = 10 * uc.retryBackoff

	product, err := backoff.Retry(ctx, func() (*entity.Product, error) {
		p, err := uc.applyOnce(ctx, in)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.ConflictDetected()
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(uc.maxRetries)))
	if err != nil {
		uc.metrics.AdjustmentRejected(in.Type, rejectReason(err))
		return nil, err
	}

	uc.afterCommit(context.WithoutCancel(ctx), product, in.Type)
	uc.metrics.AdjustmentApplied(in.Type)
	return dto.NewProductResponse(product), nil
}

// Increase registra una entrada (IN).
func (uc *AdjustStockUseCase) Increase(ctx context.Context, productID string, quantity int, reason, userID string) (*dto.ProductResponse, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID: productID,
		Type:      entity.MovementTypeIN,
		Quantity:  quantity,
		Reason:    reason,
		UserID:    userID,
	})
}

// Decrease registra una salida (OUT). Falla con domain.ErrInsufficientStock si no alcanza.
func (uc *AdjustStockUseCase) Decrease(ctx context.Context, productID string, quantity int, reason, userID string) (*dto.ProductResponse, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID: productID,
		Type:      entity.MovementTypeOUT,
		Quantity:  quantity,
		Reason:    reason,
		UserID:    userID,
	})
}

// applyOnce un intento completo: una transacción, commit o rollback.
func (uc *AdjustStockUseCase) applyOnce(ctx context.Context, in AdjustStockInput) (*entity.Product, error) {
	var result *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// Bloquea la fila del producto hasta el commit/rollback
		product, err := productRepo.FindActiveByIDForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		newAmount, err := inventory.ApplyMovement(product.Amount, in.Type, in.Quantity)
		if err != nil {
			return err
		}
		product.Amount = newAmount
		if err := productRepo.UpdateAmount(ctx, product); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			Reason:    in.Reason,
			CreatedBy: in.UserID,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// afterCommit efectos posteriores al commit. Sus errores los registra cada adaptador
// y nunca cambian el resultado del ajuste.
func (uc *AdjustStockUseCase) afterCommit(ctx context.Context, product *entity.Product, movementType string) {
	_ = uc.cache.Invalidate(ctx, ports.ProductIDKey(product.ID), ports.ProductSKUKey(product.SKU))
	_ = uc.cache.InvalidateAll(ctx, ports.BucketProductLists)

	if product.IsBelowMinimum() {
		_ = uc.publisher.PublishLowStock(ctx, ports.LowStockEvent{
			ProductID:    product.ID,
			SKU:          product.SKU,
			Name:         product.Name,
			Amount:       product.Amount,
			StockMin:     product.StockMin,
			Deficit:      product.Deficit(),
			MovementType: movementType,
			OccurredAt:   uc.now().UTC(),
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "STORAGE_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, string, string, []byte) error { return nil }
func (nopCache) Invalidate(context.Context, ...string) error       { return nil }
func (nopCache) InvalidateAll(context.Context, string) error       { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishLowStock(context.Context, ports.LowStockEvent) error { return nil }

type nopMetrics struct{}

func (nopMetrics) AdjustmentApplied(string)          {}
func (nopMetrics) AdjustmentRejected(string, string) {}
func (nopMetrics) ConflictDetected()                 {}
