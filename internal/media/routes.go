package media

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"anilistapi/internal/anilist"
	"anilistapi/pkg/models"
)

// Route binds one REST path to one upstream query.
type Route struct {
	Kind      models.Kind
	Operation models.Operation
	Path      string // relative to /<kind>
	Query     anilist.Query
}

// DefaultRoutes is the full REST surface: five manga routes and four anime
// routes. Each route's query comes from the anilist catalog.
func DefaultRoutes() []Route {
	table := []struct {
		kind models.Kind
		op   models.Operation
		path string
	}{
		{models.KindManga, models.OpTop100, "/top100"},
		{models.KindManga, models.OpTrending, "/trending"},
		{models.KindManga, models.OpTopManhwa, "/top-manhwa"},
		{models.KindManga, models.OpSearch, "/search/:query"},
		{models.KindManga, models.OpByID, "/:id"},

		{models.KindAnime, models.OpTop100, "/top100"},
		{models.KindAnime, models.OpTrending, "/trending"},
		{models.KindAnime, models.OpSearch, "/search/:query"},
		{models.KindAnime, models.OpByID, "/:id"},
	}

	routes := make([]Route, 0, len(table))
	for _, e := range table {
		q, ok := anilist.Lookup(e.kind, e.op)
		if !ok {
			panic(fmt.Sprintf("media: no %s query for %s", e.op, e.kind))
		}
		routes = append(routes, Route{Kind: e.kind, Operation: e.op, Path: e.path, Query: q})
	}
	return routes
}

// FullPath is the absolute gin pattern, e.g. /manga/search/:query.
func (r Route) FullPath() string {
	return "/" + string(r.Kind) + r.Path
}

func (r Route) String() string {
	return fmt.Sprintf("GET %s -> %s", r.FullPath(), r.Query.Name)
}

// params validates the request against this route's operation.
func (r Route) params(c *gin.Context) (QueryParams, error) {
	p := QueryParams{Kind: r.Kind, Operation: r.Operation}

	if r.Operation == models.OpByID {
		id, err := ParseID(c.Param("id"))
		if err != nil {
			return QueryParams{}, err
		}
		p.ID = id
		return p, nil
	}

	page, perPage, err := ParsePaging(c.Query("page"), c.Query("perPage"))
	if err != nil {
		return QueryParams{}, err
	}
	p.Page, p.PerPage = page, perPage

	if r.Operation == models.OpSearch {
		p.Search = c.Param("query")
	}
	return p, nil
}
