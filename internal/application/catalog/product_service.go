package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	ids            shared.IDGenerator
	reserver       *inventory.StockReserver
	policy         concurrency.Policy
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	ids shared.IDGenerator,
	policy concurrency.Policy,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		ids:         ids,
		reserver:    inventory.NewStockReserver(policy, logger),
		policy:      policy,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	taxCategory, err := valueobject.ParseTaxCategory(req.TaxCategory)
	if err != nil {
		return nil, err
	}
	kind := catalog.ProductKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", fmt.Sprintf("Unknown product kind %q", req.Kind))
	}

	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("ALREADY_EXISTS", "Product with this code already exists")
	}

	details := catalog.ProductDetails{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		TaxCategory: taxCategory,
	}

	var expiresOn time.Time
	if kind == catalog.ProductKindPerishable {
		expiresOn, err = parseDate(req.ExpiresOn)
		if err != nil {
			return nil, err
		}
	} else if req.ExpiresOn != "" {
		return nil, shared.NewValidationError("NOT_PERISHABLE", "Only perishable products have an expiration date")
	}

	id, err := s.ids.NextID(ctx, shared.SequenceProduct)
	if err != nil {
		return nil, fmt.Errorf("allocate product id: %w", err)
	}

	var product *catalog.Product
	if kind == catalog.ProductKindPerishable {
		product, err = catalog.NewPerishableProduct(id, details, req.InitialQuantity, expiresOn)
	} else {
		product, err = catalog.NewNonPerishableProduct(id, details, req.InitialQuantity)
	}
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID int64) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves the products matching the filter, ordered by id
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	kept := products[:0]
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		if filter.Kind != "" && string(p.Kind) != filter.Kind {
			continue
		}
		if filter.InStock != nil && (p.OnHand() > 0) != *filter.InStock {
			continue
		}
		kept = append(kept, p)
	}
	return ToProductResponses(kept), nil
}

// Update updates the descriptive attributes and price of a product. Stock
// is left as stored.
func (s *ProductService) Update(ctx context.Context, productID int64, req UpdateProductRequest) (*ProductResponse, error) {
	if req.Code != nil {
		current, err := s.find(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(strings.TrimSpace(*req.Code), current.Code) {
			exists, err := s.productRepo.ExistsByCode(ctx, *req.Code)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewValidationError("ALREADY_EXISTS", "Product with this code already exists")
			}
		}
	}

	product, err := s.mutate(ctx, productID, func(p *catalog.Product) error {
		details := catalog.ProductDetails{
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Description,
			UnitPrice:   p.UnitPrice,
			TaxCategory: p.TaxCategory,
		}
		if req.Code != nil {
			details.Code = *req.Code
		}
		if req.Name != nil {
			details.Name = *req.Name
		}
		if req.Description != nil {
			details.Description = *req.Description
		}
		if req.UnitPrice != nil {
			details.UnitPrice = *req.UnitPrice
		}
		if req.TaxCategory != nil {
			tc, err := valueobject.ParseTaxCategory(*req.TaxCategory)
			if err != nil {
				return err
			}
			details.TaxCategory = tc
		}
		return p.Update(details)
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// SetExpiration changes the expiration date of a perishable product
func (s *ProductService) SetExpiration(ctx context.Context, productID int64, req SetExpirationRequest) (*ProductResponse, error) {
	expiresOn, err := parseDate(req.ExpiresOn)
	if err != nil {
		return nil, err
	}
	product, err := s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.SetExpiration(expiresOn)
	})
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// AdjustInventory applies a manual stock correction through the same
// versioned path used for invoice reservations
func (s *ProductService) AdjustInventory(ctx context.Context, productID int64, req AdjustInventoryRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	product, err := s.reserver.Adjust(ctx, s.productRepo, productID, req.Delta)
	if err != nil {
		return nil, mapNotFound(err, productID)
	}
	s.logger.Info("inventory adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", req.Delta),
		zap.Int("on_hand", product.OnHand()),
		zap.String("reason", req.Reason),
	)
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// PriceIncludingTax quotes price×quantity plus tax for available stock
func (s *ProductService) PriceIncludingTax(ctx context.Context, productID int64, quantity int) (*PriceQuote, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	total, err := product.PriceIncludingTax(quantity)
	if err != nil {
		return nil, err
	}
	subtotal := product.Subtotal(quantity)
	return &PriceQuote{
		ProductID: productID,
		Quantity:  quantity,
		Subtotal:  subtotal.Round(valueobject.ReportingPlaces),
		Tax:       total.Sub(subtotal).Round(valueobject.ReportingPlaces),
		Total:     total.Round(valueobject.ReportingPlaces),
	}, nil
}

// Delete deletes a product. Issued invoices keep their own copy of the
// product's code, name and price.
func (s *ProductService) Delete(ctx context.Context, productID int64) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return mapNotFound(err, productID)
	}
	return nil
}

func (s *ProductService) mutate(ctx context.Context, productID int64, apply func(*catalog.Product) error) (*catalog.Product, error) {
	product, err := concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("update product %d", productID),
		func(ctx context.Context) (*catalog.Product, error) {
			p, err := s.find(ctx, productID)
			if err != nil {
				return nil, err
			}
			if err := apply(p); err != nil {
				return nil, err
			}
			if err := s.productRepo.SaveWithLock(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, product)
	return product, nil
}

func (s *ProductService) find(ctx context.Context, productID int64) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapNotFound(err, productID)
	}
	return product, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Int64("product_id", product.ID), zap.Error(err))
	}
}

func mapNotFound(err error, productID int64) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %d not found", productID))
	}
	return err
}

func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, shared.NewValidationError("INVALID_EXPIRATION", "Perishable products need an expiration date")
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, shared.NewValidationError("INVALID_EXPIRATION", fmt.Sprintf("Expiration %q must be YYYY-MM-DD", s))
	}
	return d, nil
}
