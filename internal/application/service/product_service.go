package service

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ProductService handles product-related operations
type ProductService struct {
	tx           repository.TransactionManager
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       ImageStore
	log          *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	tx repository.TransactionManager,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images ImageStore,
	log *zap.Logger,
) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		log:          log,
	}
}

// SaveProductInput creates a product, or updates it when ID is set
type SaveProductInput struct {
	ID         *uuid.UUID
	Name       string
	CategoryID uuid.UUID
	Price      string
	Variations []entity.Variation
	Image      *multipart.FileHeader
}

// SaveProduct creates or updates a product. The counter number is copied from
// the category and the category product counts are kept current.
func (s *ProductService) SaveProduct(ctx context.Context, input *SaveProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Product name is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, apperror.NewFieldError("categoryId", "Category is required")
	}

	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to save product", err)
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	product := &entity.Product{}
	if input.ID != nil {
		product, err = s.productRepo.GetByID(ctx, *input.ID)
		if err != nil {
			return nil, apperror.NewInternalError("failed to save product", err)
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}
	}
	previousCategory := product.CategoryID

	product.Name = name
	product.Variations = datatypes.JSONSlice[entity.Variation](input.Variations)
	if product.Variations == nil {
		product.Variations = datatypes.JSONSlice[entity.Variation]{}
	}
	if err := applyPricing(product, input.Price); err != nil {
		return nil, err
	}
	if product.ID == uuid.Nil || previousCategory != category.ID {
		product.CounterNo = category.CounterNo
	}
	product.CategoryID = category.ID

	imageURL, err := saveImage(s.images, "product", input.Image)
	if err != nil {
		return nil, err
	}
	var oldImage string
	if imageURL != "" {
		oldImage = product.ImageURL
		product.ImageURL = imageURL
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if product.ID == uuid.Nil {
			if err := s.productRepo.Create(txCtx, product); err != nil {
				return err
			}
		} else if err := s.productRepo.Update(txCtx, product); err != nil {
			return err
		}

		if err := s.categoryRepo.RefreshProductCount(txCtx, category.ID); err != nil {
			return err
		}
		if previousCategory != uuid.Nil && previousCategory != category.ID {
			return s.categoryRepo.RefreshProductCount(txCtx, previousCategory)
		}
		return nil
	})
	if err != nil {
		s.discardImage(imageURL)
		return nil, apperror.NewInternalError("failed to save product", err)
	}

	s.discardImage(oldImage)
	product.Category = category
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch product", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products by name
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]entity.Product, error) {
	filter.WithCategory = true
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch products", err)
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// DeleteProduct deletes a product and refreshes its category count
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NewInternalError("failed to delete product", err)
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.categoryRepo.RefreshProductCount(txCtx, product.CategoryID)
	})
	if err != nil {
		return apperror.NewInternalError("failed to delete product", err)
	}

	s.discardImage(product.ImageURL)
	return nil
}

// UncategorizedName groups products whose category was deleted
const UncategorizedName = "Uncategorized"

// CategoryProducts is one group of the category wise list
type CategoryProducts struct {
	Category   string           `json:"category"`
	CategoryID *uuid.UUID       `json:"categoryId,omitempty"`
	CounterNo  int              `json:"counterNo"`
	Products   []entity.Product `json:"products"`
}

// CategoryWiseList groups all products by category name
func (s *ProductService) CategoryWiseList(ctx context.Context) ([]CategoryProducts, error) {
	products, err := s.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]CategoryProducts, 0)
	for _, p := range products {
		key := UncategorizedName
		var group CategoryProducts
		if p.Category != nil {
			key = p.Category.ID.String()
			id := p.Category.ID
			group = CategoryProducts{Category: p.Category.Name, CategoryID: &id, CounterNo: p.Category.CounterNo}
		} else {
			group = CategoryProducts{Category: UncategorizedName, CounterNo: p.CounterNo}
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			group.Products = []entity.Product{}
			groups = append(groups, group)
		}
		p.Category = nil
		groups[i].Products = append(groups[i].Products, p)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return strings.ToLower(groups[a].Category) < strings.ToLower(groups[b].Category)
	})
	return groups, nil
}

func (s *ProductService) discardImage(url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(url); err != nil {
		s.log.Warn("failed to delete product image", zap.String("url", url), zap.Error(err))
	}
}
