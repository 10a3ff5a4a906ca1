package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"go.uber.org/zap"
)

// CategoryService handles category-related operations
type CategoryService struct {
	tx           repository.TransactionManager
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	images       ImageStore
	log          *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	tx repository.TransactionManager,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	images ImageStore,
	log *zap.Logger,
) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{
		tx:           tx,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		images:       images,
		log:          log,
	}
}

// SaveCategoryInput creates a category, or updates it when ID is set
type SaveCategoryInput struct {
	ID        *uuid.UUID
	Name      string
	CounterNo string
	Image     *multipart.FileHeader
}

// SaveCategory creates or updates a category. Changing the counter number
// moves every product of the category to the new counter.
func (s *CategoryService) SaveCategory(ctx context.Context, input *SaveCategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Category name is required")
	}
	counterNo, err := ParseCounterNo(input.CounterNo)
	if err != nil {
		return nil, err
	}

	var category *entity.Category
	if input.ID != nil {
		category, err = s.categoryRepo.GetByID(ctx, *input.ID)
		if err != nil {
			return nil, apperror.NewInternalError("failed to save category", err)
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	imageURL, err := saveImage(s.images, "category", input.Image)
	if err != nil {
		return nil, err
	}

	var oldImage string
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if category == nil {
			category = &entity.Category{Name: name, CounterNo: counterNo, ImageURL: imageURL}
			return s.categoryRepo.Create(txCtx, category)
		}

		counterChanged := category.CounterNo != counterNo
		category.Name = name
		category.CounterNo = counterNo
		if imageURL != "" {
			oldImage = category.ImageURL
			category.ImageURL = imageURL
		}
		if err := s.categoryRepo.Update(txCtx, category); err != nil {
			return err
		}
		if counterChanged {
			return s.productRepo.SyncCounterNo(txCtx, category.ID, counterNo)
		}
		return nil
	})
	if err != nil {
		s.discardImage(imageURL)
		return nil, apperror.NewInternalError("failed to save category", err)
	}

	s.discardImage(oldImage)
	return category, nil
}

// ListCategories returns every category by name
func (s *CategoryService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternalError("failed to fetch categories", err)
	}
	if categories == nil {
		categories = []entity.Category{}
	}
	return categories, nil
}

// DeleteCategory deletes a category. Its products are left in place.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NewInternalError("failed to delete category", err)
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return apperror.NewInternalError("failed to delete category", err)
	}
	s.discardImage(category.ImageURL)
	return nil
}

func (s *CategoryService) discardImage(url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(url); err != nil {
		s.log.Warn("failed to delete category image", zap.String("url", url), zap.Error(err))
	}
}
