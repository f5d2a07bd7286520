package inventory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const feedHeader = "SKU,Name,Category,Unit Price,Tax %,Stock\n"

func TestImportMalformedNumberDefaultsToZero(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)

	res, err := im.Import(context.Background(), strings.NewReader(feedHeader+"A-1,Widget,,abc,5,10\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Empty(t, res.Errors)
	require.NotEmpty(t, res.BatchID)

	p, ok := repo.product("A-1")
	require.True(t, ok)
	require.True(t, p.UnitPrice.IsZero())
	require.True(t, p.TaxPercent.Equal(decimal.NewFromInt(5)))
	require.Nil(t, p.CategoryID)
}

func TestImportRejectRowPolicy(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseRejectRow, nil)

	res, err := im.Import(context.Background(), strings.NewReader(feedHeader+"A-1,Widget,,abc,5,10\nB-2,Bolt,,1.50,0,3\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "Error importing row A-1,Widget,,abc,5,10")
	_, ok := repo.product("A-1")
	require.False(t, ok)
}

func TestImportCreatesCategoryOnce(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)

	res, err := im.Import(context.Background(), strings.NewReader(feedHeader+
		"A-1,Widget,Tools,1,0,1\nA-2,Gadget,Tools,2,0,1\nA-3,Other,tools,2,0,1\n"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	require.Len(t, repo.categories, 2, "names are matched exactly")

	a1, _ := repo.product("A-1")
	a2, _ := repo.product("A-2")
	require.Equal(t, *a1.CategoryID, *a2.CategoryID)
}

func TestImportUpdatesExistingSKUInPlace(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)
	ctx := context.Background()

	_, err := im.Import(ctx, strings.NewReader(feedHeader+"A-1,Widget,,1,0,1\n"))
	require.NoError(t, err)
	before, _ := repo.product("A-1")

	res, err := im.Import(ctx, strings.NewReader(feedHeader+"  A-1 ,Widget v2,Parts,9.99,12,40\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, 0, res.Created)

	after, _ := repo.product("A-1")
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, "Widget v2", after.Name)
	require.True(t, after.UnitPrice.Equal(decimal.RequireFromString("9.99")))
	require.True(t, after.Stock.Equal(decimal.NewFromInt(40)))
	require.Len(t, repo.products, 1)
}

func TestImportRowFailureDoesNotAbortBatch(t *testing.T) {
	repo := newMemoryRepo()
	repo.failSKU = "BAD"
	im := NewImporter(repo, ParseZero, nil)

	res, err := im.Import(context.Background(), strings.NewReader(feedHeader+
		"BAD,Broken,NewCat,1,0,1\n,No SKU,,1,0,1\nOK,Fine,,1,0,1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 2)
	require.NotContains(t, repo.categories, "NewCat", "failed row must not leave its category behind")
}

func TestImportHeaderHandling(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)
	ctx := context.Background()

	res, err := im.Import(ctx, strings.NewReader("SKU,Name,Stock\nA-1,Widget,4\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	p, _ := repo.product("A-1")
	require.Equal(t, "Widget", p.Name)
	require.True(t, p.UnitPrice.IsZero())
	require.True(t, p.Stock.Equal(decimal.NewFromInt(4)))
	require.Nil(t, p.CategoryID)

	res, err = im.Import(ctx, strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, res.Imported)
	require.Empty(t, res.Errors)

	res, err = im.Import(ctx, strings.NewReader("\ufeffStock,Tax %,Unit Price,Category,Name,SKU\n7,0,2,,Reordered,R-1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	p, _ = repo.product("R-1")
	require.Equal(t, "Reordered", p.Name)
	require.True(t, p.Stock.Equal(decimal.NewFromInt(7)))
}

func TestImportWithoutSKUColumnFailsEveryRow(t *testing.T) {
	repo := newMemoryRepo()
	res, err := NewImporter(repo, ParseZero, nil).Import(context.Background(),
		strings.NewReader("Name,Stock\nWidget,4\nGadget,2\n"))
	require.NoError(t, err)
	require.Zero(t, res.Imported)
	require.Len(t, res.Errors, 2)
	require.Contains(t, res.Errors[0], "Error importing row Widget,4")
	require.Empty(t, repo.products)
}

func TestImportTrimsNameAndCategory(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)

	res, err := im.Import(context.Background(), strings.NewReader(feedHeader+
		"A-1,Widget,Tools,1,0,1\nA-2, Gadget ,  Tools ,1,0,1\nA-3,Bolt,   ,1,0,1\n"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	require.Equal(t, map[string]int64{"Tools": 1}, repo.categories)

	a1, _ := repo.product("A-1")
	a2, _ := repo.product("A-2")
	a3, _ := repo.product("A-3")
	require.Equal(t, "Gadget", a2.Name)
	require.Equal(t, *a1.CategoryID, *a2.CategoryID)
	require.Nil(t, a3.CategoryID, "blank category means none")
}

func TestImportRejectRowTreatsBlankNumbersAsZero(t *testing.T) {
	repo := newMemoryRepo()
	res, err := NewImporter(repo, ParseRejectRow, nil).Import(context.Background(),
		strings.NewReader(feedHeader+"A-1,Widget,,,,\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Empty(t, res.Errors)
	p, _ := repo.product("A-1")
	require.True(t, p.Stock.IsZero())
}

func TestImportReportsInvalidUTF8Row(t *testing.T) {
	repo := newMemoryRepo()
	res, err := NewImporter(repo, ParseZero, nil).Import(context.Background(),
		strings.NewReader(feedHeader+"A-1,Wid\xffget,,1,0,1\nA-2,Gadget,,1,0,1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], ErrInvalidEncoding.Error())
	_, ok := repo.product("A-1")
	require.False(t, ok)
}

func TestImportStopsOnReaderFailure(t *testing.T) {
	repo := newMemoryRepo()
	broken := errors.New("connection reset")
	feed := io.MultiReader(strings.NewReader(feedHeader+"A-1,Widget,,1,0,1\n"), iotest.ErrReader(broken))

	res, err := NewImporter(repo, ParseZero, nil).Import(context.Background(), feed)
	require.ErrorIs(t, err, broken)
	require.Equal(t, 1, res.Imported)
}

func TestExportRoundTrips(t *testing.T) {
	repo := newMemoryRepo()
	im := NewImporter(repo, ParseZero, nil)
	ctx := context.Background()
	feed := feedHeader + "A-1,Widget,Tools,1.25,5,10\nA-2,Gadget,,2,0,-3\nA-3,\"Bolt, steel\",Parts,0.1,18,100\n"

	_, err := im.Import(ctx, strings.NewReader(feed))
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, Export(ctx, repo, &first))
	require.NoError(t, Export(ctx, repo, &second))
	require.Equal(t, first.String(), second.String())

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "SKU,Name,Category,Unit Price,Tax %,Stock", lines[0])
	require.Equal(t, "A-2,Gadget,,2,0,-3", lines[2])

	reimport := newMemoryRepo()
	res, err := NewImporter(reimport, ParseRejectRow, nil).Import(ctx, &first)
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)
	bolt, _ := reimport.product("A-3")
	require.Equal(t, "Bolt, steel", bolt.Name)
}
