package catalog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Luva Látex", Category: domain.CategoryDisposables, Subcategory: "Luvas"},
		{ID: "2", Name: "Seringa", Category: domain.CategoryDisposables},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestQuerySubcategoryScenario(t *testing.T) {
	products := sampleProducts()

	t.Run("subcategory All returns both", func(t *testing.T) {
		got := Query(products, Filter{Category: "Descartáveis", Subcategory: All})
		require.Equal(t, []string{"1", "2"}, ids(got))
	})

	t.Run("subcategory Luvas returns only gloves", func(t *testing.T) {
		got := Query(products, Filter{Category: "Descartáveis", Subcategory: "Luvas"})
		require.Equal(t, []string{"1"}, ids(got))
	})

	t.Run("other category returns empty non-nil", func(t *testing.T) {
		got := Query(products, Filter{Category: "Ortopedia", Subcategory: All})
		require.NotNil(t, got)
		require.Empty(t, got)
	})
}

func TestQuerySearch(t *testing.T) {
	products := append(sampleProducts(), domain.Product{
		ID: "3", Name: "Cadeira de Rodas", Category: domain.CategoryOrthopedics, Description: "Aço e alumínio",
	})

	t.Run("luva ranks gloves first", func(t *testing.T) {
		got := Query(products, Filter{Search: "luva"})
		require.NotEmpty(t, got)
		assert.Equal(t, "1", got[0].ID)
		assert.NotContains(t, ids(got), "2")
		assert.NotContains(t, ids(got), "3")
	})

	t.Run("empty search keeps original order", func(t *testing.T) {
		got := Query(products, Filter{Search: ""})
		require.Equal(t, []string{"1", "2", "3"}, ids(got))
	})

	t.Run("whitespace search is empty", func(t *testing.T) {
		got := Query(products, Filter{Search: "   "})
		require.Equal(t, []string{"1", "2", "3"}, ids(got))
	})

	t.Run("typo tolerant", func(t *testing.T) {
		got := Query(products, Filter{Search: "sernga"})
		require.Equal(t, []string{"2"}, ids(got))
	})

	t.Run("case and accent insensitive", func(t *testing.T) {
		got := Query(products, Filter{Search: "LATEX"})
		require.Equal(t, []string{"1"}, ids(got))

		got = Query(products, Filter{Search: "aluminio"})
		require.Equal(t, []string{"3"}, ids(got))
	})

	t.Run("search by category name", func(t *testing.T) {
		got := Query(products, Filter{Search: "descartaveis"})
		require.ElementsMatch(t, []string{"1", "2"}, ids(got))
	})

	t.Run("search combined with filters", func(t *testing.T) {
		got := Query(products, Filter{Search: "descartaveis", Category: "Descartáveis", Subcategory: "Luvas"})
		require.Equal(t, []string{"1"}, ids(got))
	})

	t.Run("name match outranks description match", func(t *testing.T) {
		list := []domain.Product{
			{ID: "a", Name: "Kit", Description: "inclui luvas"},
			{ID: "b", Name: "Luvas nitrilo"},
		}
		got := Search(list, "luvas", DefaultThreshold)
		require.Equal(t, []string{"b", "a"}, ids(got))
	})
}

func TestQueryUncategorized(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Name: "Sem categoria"},
		{ID: "2", Name: "Estranho", Category: "Brinquedos"},
		{ID: "3", Name: "Bota", Category: domain.CategoryOrthopedics},
	}

	require.Equal(t, []string{"1", "2", "3"}, ids(Query(products, Filter{Category: All})))
	require.Equal(t, []string{"3"}, ids(Query(products, Filter{Category: "Ortopedia"})))
	require.Empty(t, Query(products, Filter{Category: "Brinquedos"}))
}

func TestQueryWithoutSearchIsPlainFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	subs := []string{"", "Luvas", "Seringas", "Agulhas"}

	products := make([]domain.Product, 200)
	for i := range products {
		products[i] = domain.Product{
			ID:          fmt.Sprint(i),
			Name:        fmt.Sprintf("Produto %d", i),
			Category:    domain.Categories[rng.Intn(len(domain.Categories))],
			Subcategory: subs[rng.Intn(len(subs))],
		}
	}

	categories := append([]string{All}, "Medicamentos", "Descartáveis", "Ortopedia")
	for _, c := range categories {
		for _, s := range append([]string{All}, subs[1:]...) {
			var want []string
			for _, p := range products {
				if (c == All || string(p.Category) == c) && (s == All || p.Subcategory == s) {
					want = append(want, p.ID)
				}
			}

			got := ids(Query(products, Filter{Category: c, Subcategory: s}))
			if len(want) == 0 {
				require.Empty(t, got, "category=%s subcategory=%s", c, s)
				continue
			}
			require.Equal(t, want, got, "category=%s subcategory=%s", c, s)
		}
	}
}

func TestQueryDoesNotMutateInput(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Name: "Meias de Compressão"},
		{ID: "2", Name: "Luvas"},
	}

	_ = Query(products, Filter{Search: "luvas"})
	require.Equal(t, []string{"1", "2"}, ids(products))
}

func TestSubcategories(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Category: domain.CategoryDisposables, Subcategory: "Seringas"},
		{ID: "2", Category: domain.CategoryDisposables, Subcategory: "Luvas"},
		{ID: "3", Category: domain.CategoryDisposables, Subcategory: "Luvas"},
		{ID: "4", Category: domain.CategoryDisposables},
		{ID: "5", Category: domain.CategoryDisposables, Subcategory: "   "},
		{ID: "6", Category: domain.CategoryOrthopedics, Subcategory: "Botas"},
		{ID: "7", Subcategory: "Avulsos"},
	}

	require.Equal(t, []string{All, "Luvas", "Seringas"}, Subcategories(products, "Descartáveis"))
	require.Equal(t, []string{All, "Avulsos", "Botas", "Luvas", "Seringas"}, Subcategories(products, All))
	require.Equal(t, []string{All}, Subcategories(products, "Odontologia"))
	require.Equal(t, []string{All}, Subcategories(nil, All))

	for _, facet := range Subcategories(products, All) {
		require.NotEmpty(t, facet)
	}
}

func TestIsAll(t *testing.T) {
	for _, v := range []string{"", "All", "Todos", "Todas", " All "} {
		require.True(t, IsAll(v), v)
	}
	require.False(t, IsAll("Ortopedia"))
}

func TestSimilarity(t *testing.T) {
	require.Equal(t, 1.0, Similarity("luva", "luva latex"))
	require.InDelta(t, 0.75, Similarity("luvs", "luva latex"), 1e-9)
	require.Zero(t, Similarity("", "luva"))
	require.Zero(t, Similarity("luva", ""))
	require.Less(t, Similarity("luva", "seringa"), DefaultThreshold)
}

func TestFold(t *testing.T) {
	require.Equal(t, "descartaveis", Fold(" Descartáveis "))
	require.Equal(t, "acao", Fold("AÇÃO"))
}
