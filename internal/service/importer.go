package service

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
)

// Sheet columns, in order.
var importHeader = []string{"slug", "name", "description", "price", "discount_price", "stock", "category"}

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

type Importer struct {
	Repo    *repo.GormRepo
	Catalog *CatalogService
}

// Import upserts one product per sheet row, keyed by slug. Rows that do not parse
// or name an unknown category are skipped.
func (im *Importer) Import(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.import")

	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, ValidationErrors{{Field: "file", Err: err}}
	}
	if len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
		return nil, ValidationErrors{{Field: "file", Err: ErrRequired}}
	}

	sheet := book.Sheets[0]
	res := &ImportResult{}
	categories := map[string]uint{}

	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		name := get(1)
		price, errPrice := decimal.NewFromString(get(3))
		stock, errStock := strconv.Atoi(get(5))
		catSlug := get(6)
		if name == "" || errPrice != nil || errStock != nil || catSlug == "" {
			res.Skipped++
			continue
		}

		catID, ok := categories[catSlug]
		if !ok {
			cat, err := im.Repo.CategoryBySlug(ctx, catSlug)
			if err != nil {
				if !isNotFound(err) {
					return nil, err
				}
				res.Skipped++
				continue
			}
			catID = cat.ID
			categories[catSlug] = catID
		}

		slug := get(0)
		if slug == "" {
			slug = Slugify(name)
		}
		description := get(2)
		var discount *decimal.Decimal
		if raw := get(4); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				res.Skipped++
				continue
			}
			discount = &d
		}

		existing, err := im.Repo.ProductBySlug(ctx, slug)
		switch {
		case err == nil:
			patch := ProductPatch{
				Name:          &name,
				Description:   &description,
				Price:         &price,
				DiscountPrice: discount,
				ClearDiscount: discount == nil,
				Stock:         &stock,
				CategoryID:    &catID,
			}
			if _, err := im.Catalog.PatchProduct(ctx, existing.ID, patch); err != nil {
				l.Warn("import_row_skipped", "row", i+1, "slug", slug, "error", err)
				res.Skipped++
				continue
			}
			res.Updated++
		case isNotFound(err):
			in := ProductInput{
				Name:          name,
				Slug:          slug,
				Description:   description,
				Price:         price,
				DiscountPrice: discount,
				Stock:         stock,
				CategoryID:    catID,
			}
			if _, err := im.Catalog.CreateProduct(ctx, in); err != nil {
				l.Warn("import_row_skipped", "row", i+1, "slug", slug, "error", err)
				res.Skipped++
				continue
			}
			res.Created++
		default:
			return nil, err
		}
	}

	l.Info("import_completed", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	return res, nil
}

func (im *Importer) Export(ctx context.Context) ([]byte, error) {
	items, err := im.Repo.AllProducts(ctx)
	if err != nil {
		return nil, err
	}

	book := xlsx.NewFile()
	sheet, err := book.AddSheet("products")
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, h := range importHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range items {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		discount := ""
		if p.DiscountPrice.Valid {
			discount = p.DiscountPrice.Decimal.StringFixed(2)
		}
		row.AddCell().SetString(discount)
		row.AddCell().SetString(strconv.Itoa(p.Stock))
		row.AddCell().SetString(p.Category.Slug)
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

