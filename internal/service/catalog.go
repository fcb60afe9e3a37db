package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/search"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

type Indexer interface {
	Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error)
	Put(ctx context.Context, doc search.Document) error
	Remove(ctx context.Context, id uint) error
}

type CatalogService struct {
	Repo        *repo.GormRepo
	Index       Indexer
	Events      events.Publisher
	Reviews     *ReviewService
	Recommender Recommender
	MediaRoot   string
}

type ProductList struct {
	Category *models.Category
	Items    []models.Product
	Meta     util.Meta
}

type ProductView struct {
	Product     *models.Product
	Stats       *ReviewStats
	Reviews     *ReviewPage
	Suggestions []models.Product
}

type ProductInput struct {
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         int              `json:"stock"`
	CategoryID    uint             `json:"category_id"`
}

type ProductPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ClearDiscount bool             `json:"clear_discount"`
	Stock         *int             `json:"stock"`
	CategoryID    *uint            `json:"category_id"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, title, slug string, ordering int) (*models.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ValidationErrors{{Field: "title", Err: ErrRequired}}
	}
	if slug == "" {
		slug = Slugify(title)
	}
	if ordering == 0 {
		ordering = 1
	}
	cat := &models.Category{Title: title, Slug: slug, Ordering: ordering}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// ListProducts pages through the catalog newest first, optionally narrowed by category and name.
func (s *CatalogService) ListProducts(ctx context.Context, categorySlug, query string, page int) (*ProductList, error) {
	out := &ProductList{}
	f := repo.ProductFilter{Query: query}
	if categorySlug != "" {
		cat, err := s.Repo.CategoryBySlug(ctx, categorySlug)
		if err != nil {
			return nil, notFound(err, "category")
		}
		out.Category = cat
		f.CategoryID = &cat.ID
	}

	offset, limit := util.Calculate(page, util.ProductPageSize)
	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	out.Items = items
	out.Meta = util.NewMeta(page, util.ProductPageSize, total)
	return out, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Repo.ProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

// ProductPage loads the product, then its reviews and suggestions concurrently.
func (s *CatalogService) ProductPage(ctx context.Context, slug string, reviewPage int) (*ProductView, error) {
	p, err := s.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := &ProductView{Product: p, Suggestions: []models.Product{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.Reviews.Stats(gctx, p.ID)
		view.Stats = st
		return err
	})
	g.Go(func() error {
		rp, err := s.Reviews.List(gctx, p.ID, reviewPage)
		view.Reviews = rp
		return err
	})
	if s.Recommender != nil {
		g.Go(func() error {
			sug, err := s.Recommender.Suggest(gctx, p.ID)
			if err != nil {
				logging.FromContext(ctx).Warn("suggest_failed", "product_id", p.ID, "error", err)
				return nil
			}
			view.Suggestions = sug
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// Search asks the search index first and falls back to the name filter when it is absent or failing.
func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (*ProductList, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return &ProductList{Items: []models.Product{}, Meta: util.NewMeta(page, size, 0)}, nil
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, docs, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			ids := make([]uint, len(docs))
			for i, d := range docs {
				ids[i] = d.ID
			}
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &ProductList{Items: items, Meta: util.NewMeta(page, limit, total)}, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Query: query}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ProductList{Items: items, Meta: util.NewMeta(page, limit, total)}, nil
}

func validateProduct(p *models.Product) error {
	var errs ValidationErrors
	switch {
	case strings.TrimSpace(p.Name) == "":
		errs = append(errs, FieldError{Field: "name", Err: ErrRequired})
	case utf8.RuneCountInString(p.Name) > 100:
		errs = append(errs, FieldError{Field: "name", Err: ErrTooLong})
	}
	if p.Slug == "" {
		errs = append(errs, FieldError{Field: "slug", Err: ErrRequired})
	}
	if p.Price.IsNegative() {
		errs = append(errs, FieldError{Field: "price", Err: ErrInvalidAmount})
	}
	if p.DiscountPrice.Valid && p.DiscountPrice.Decimal.IsNegative() {
		errs = append(errs, FieldError{Field: "discount_price", Err: ErrInvalidAmount})
	}
	if p.Stock < 0 {
		errs = append(errs, FieldError{Field: "stock", Err: ErrInvalidQuantity})
	}
	if p.CategoryID == 0 {
		errs = append(errs, FieldError{Field: "category_id", Err: ErrRequired})
	}
	return errs.OrNil()
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Slug:        in.Slug,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(in.DiscountPrice.Round(2))
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	created, err := s.Repo.ProductByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, created)
	publish(ctx, s.Events, events.TopicProduct, idKey(created.ID), map[string]any{
		"type":      "product_created",
		"productID": created.ID,
		"name":      created.Name,
	})
	return created, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, in ProductPatch) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(in.DiscountPrice.Round(2))
	}
	if in.ClearDiscount {
		p.DiscountPrice = decimal.NullDecimal{}
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	updated, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, updated)
	publish(ctx, s.Events, events.TopicProduct, idKey(id), map[string]any{
		"type":      "product_updated",
		"productID": id,
		"name":      updated.Name,
	})
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	used, err := s.Repo.ProductHasOrderLines(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("product %d is referenced by carts or orders: %w", id, ErrConflict)
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}

	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_remove_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, idKey(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

var imageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// UploadImage stores the file under MediaRoot/products and points the product at it.
func (s *CatalogService) UploadImage(ctx context.Context, id uint, filename string, r io.Reader) (*models.Product, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExt[ext] {
		return nil, ValidationErrors{{Field: "image", Err: fmt.Errorf("unsupported image type %q", ext)}}
	}
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	dir := filepath.Join(s.MediaRoot, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", p.ID, p.Slug, ext)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	p.Image = filepath.ToSlash(filepath.Join("products", name))
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, search.DocumentFromProduct(*p)); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
