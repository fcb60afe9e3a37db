package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/search"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
)

type fakeIndex struct {
	docs    map[uint]search.Document
	fail    bool
	removed []uint
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]search.Document{}} }

func (f *fakeIndex) Search(_ context.Context, query string, from, size int) (int64, []search.Document, error) {
	if f.fail {
		return 0, nil, errors.New("cluster unavailable")
	}
	var out []search.Document
	for id := uint(1); id < 1000; id++ {
		d, ok := f.docs[id]
		if ok && strings.Contains(strings.ToLower(d.Name+" "+d.Description), strings.ToLower(query)) {
			out = append(out, d)
		}
	}
	total := int64(len(out))
	if from > len(out) {
		from = len(out)
	}
	end := from + size
	if end > len(out) {
		end = len(out)
	}
	return total, out[from:end], nil
}

func (f *fakeIndex) Put(_ context.Context, doc search.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id uint) error {
	delete(f.docs, id)
	f.removed = append(f.removed, id)
	return nil
}

func newCatalog(e *env, idx Indexer) *CatalogService {
	return &CatalogService{
		Repo:        e.repo,
		Index:       idx,
		Events:      e.events,
		Reviews:     e.reviews,
		Recommender: &BasketRecommender{Repo: e.repo},
	}
}

func TestCatalog_CreatePatchDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	idx := newFakeIndex()
	cs := newCatalog(e, idx)

	discount := decimal.RequireFromString("1.99")
	p, err := cs.CreateProduct(ctx, ProductInput{
		Name:          "Blue Gel Pen",
		Description:   "smooth",
		Price:         decimal.RequireFromString("2.50"),
		DiscountPrice: &discount,
		Stock:         10,
		CategoryID:    e.cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "blue-gel-pen", p.Slug)
	assert.Equal(t, "pens", p.Category.Slug)
	assert.Equal(t, "1.99", idx.docs[p.ID].Price)

	_, err = cs.CreateProduct(ctx, ProductInput{Price: decimal.RequireFromString("-1"), Stock: -1})
	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 5)

	name := "Red Gel Pen"
	patched, err := cs.PatchProduct(ctx, p.ID, ProductPatch{Name: &name, ClearDiscount: true})
	require.NoError(t, err)
	assert.Equal(t, "Red Gel Pen", patched.Name)
	assert.False(t, patched.DiscountPrice.Valid)
	assert.Equal(t, "2.50", idx.docs[p.ID].Price)

	_, err = cs.PatchProduct(ctx, 999, ProductPatch{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)

	u := testutil.User(t, e.db, "alice")
	used := testutil.Product(t, e.db, e.cat, "in-a-cart", "1.00", 3)
	_, err = e.cart.Add(ctx, u.ID, used.ID, 1)
	require.NoError(t, err)
	require.ErrorIs(t, cs.DeleteProduct(ctx, used.ID), ErrConflict)

	require.NoError(t, cs.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uint{p.ID}, idx.removed)
	require.ErrorIs(t, cs.DeleteProduct(ctx, p.ID), ErrNotFound)

	var types []string
	for _, ev := range e.events.Events(events.TopicProduct) {
		types = append(types, ev.Body["type"].(string))
	}
	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, types)
}

func TestCatalog_ListProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cs := newCatalog(e, nil)
	paper := testutil.Category(t, e.db, "paper")
	for _, slug := range []string{"a4-pad", "a5-pad", "graph-paper"} {
		testutil.Product(t, e.db, paper, slug, "1.00", 1)
	}
	testutil.Product(t, e.db, e.cat, "pen", "1.00", 1)

	all, err := cs.ListProducts(ctx, "", "", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Meta.Total)
	assert.Nil(t, all.Category)

	inPaper, err := cs.ListProducts(ctx, "paper", "pad", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, inPaper.Meta.Total)
	assert.Equal(t, "paper", inPaper.Category.Slug)

	_, err = cs.ListProducts(ctx, "missing", "", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_SearchFallsBackToDatabase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	idx := newFakeIndex()
	cs := newCatalog(e, idx)

	for _, name := range []string{"Fountain Pen", "Pencil Case", "Stapler"} {
		_, err := cs.CreateProduct(ctx, ProductInput{Name: name, Price: decimal.RequireFromString("3.00"), Stock: 1, CategoryID: e.cat.ID})
		require.NoError(t, err)
	}

	res, err := cs.Search(ctx, "pen", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Meta.Total)

	idx.fail = true
	res, err = cs.Search(ctx, "stapler", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "stapler", res.Items[0].Slug)

	empty, err := cs.Search(ctx, "  ", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestCatalog_ProductPage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cs := newCatalog(e, nil)
	p := testutil.Product(t, e.db, e.cat, "pen", "1.00", 5)
	u := testutil.User(t, e.db, "alice")
	_, err := e.reviews.Submit(ctx, p.ID, u.ID, ReviewForm{Subject: "nice", Comment: "writes well", Rating: 4})
	require.NoError(t, err)

	view, err := cs.ProductPage(ctx, "pen", 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, view.Product.ID)
	assert.EqualValues(t, 1, view.Stats.Count)
	assert.Len(t, view.Reviews.Items, 1)
	assert.NotNil(t, view.Suggestions)

	_, err = cs.ProductPage(ctx, "nope", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_UploadImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cs := newCatalog(e, nil)
	cs.MediaRoot = t.TempDir()
	p := testutil.Product(t, e.db, e.cat, "pen", "1.00", 5)

	_, err := cs.UploadImage(ctx, p.ID, "evil.exe", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrValidation)

	got, err := cs.UploadImage(ctx, p.ID, "Photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "products/"+"1-pen.png", got.Image)

	data, err := os.ReadFile(filepath.Join(cs.MediaRoot, "products", "1-pen.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	var stored models.Product
	require.NoError(t, e.db.First(&stored, p.ID).Error)
	assert.Equal(t, got.Image, stored.Image)
}

func TestCatalog_CreateCategory(t *testing.T) {
	e := newEnv(t)
	cs := newCatalog(e, nil)

	cat, err := cs.CreateCategory(context.Background(), "Art Supplies", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "art-supplies", cat.Slug)
	assert.Equal(t, 1, cat.Ordering)

	_, err = cs.CreateCategory(context.Background(), " ", "", 0)
	require.ErrorIs(t, err, ErrRequired)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Blue Gel Pen":        "blue-gel-pen",
		"  A4 -- Notebook!! ": "a4-notebook",
		"Crème Brûlée":        "crème-brûlée",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
