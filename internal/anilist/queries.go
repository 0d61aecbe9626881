package anilist

import (
	"fmt"

	"anilistapi/pkg/models"
)

// Root is the top-level field a query's data object is unwrapped from.
type Root string

const (
	RootPage  Root = "Page"
	RootMedia Root = "Media"
)

// Query is one fixed GraphQL document plus what the client needs to run it.
type Query struct {
	Name      string
	Kind      models.Kind
	Operation models.Operation
	Root      Root
	Document  string
	// Fallback is the error message used when upstream gives no message of its own.
	Fallback string
}

// Variables are the only inputs a document is parameterized by.
type Variables struct {
	Search  string
	ID      int
	Page    int
	PerPage int
}

func (v Variables) forOperation(op models.Operation) map[string]any {
	switch op {
	case models.OpByID:
		return map[string]any{"id": v.ID}
	case models.OpSearch:
		return map[string]any{"search": v.Search, "page": v.Page, "perPage": v.PerPage}
	default:
		return map[string]any{"page": v.Page, "perPage": v.PerPage}
	}
}

const mangaFields = `
    id
    title {
      romaji
      english
      native
    }
    coverImage {
      large
    }
    description(asHtml: false)
    chapters
    volumes
    status
    genres
    averageScore
    siteUrl`

// anime list-sort queries skip duration and studios
const animeListFields = mangaFields + `
    episodes
    season
    seasonYear`

const animeFullFields = animeListFields + `
    duration
    studios(isMain: true) {
      nodes {
        name
      }
    }`

const pageInfoFields = `
    pageInfo {
      total
      currentPage
      lastPage
      hasNextPage
      perPage
    }`

func pageDocument(vars, mediaArgs, fields string) string {
	return fmt.Sprintf(`query (%s) {
  Page(page: $page, perPage: $perPage) {%s
    media(%s) {%s
    }
  }
}`, vars, pageInfoFields, mediaArgs, fields)
}

func mediaDocument(mediaType, fields string) string {
	return fmt.Sprintf(`query ($id: Int) {
  Media(id: $id, type: %s) {%s
  }
}`, mediaType, fields)
}

const (
	pageVars   = "$page: Int, $perPage: Int"
	searchVars = "$search: String, $page: Int, $perPage: Int"
)

var (
	SearchManga = Query{
		Name: "searchManga", Kind: models.KindManga, Operation: models.OpSearch, Root: RootPage,
		Document: pageDocument(searchVars, "search: $search, type: MANGA", mangaFields),
		Fallback: "AniList search error",
	}
	MangaByID = Query{
		Name: "getMangaById", Kind: models.KindManga, Operation: models.OpByID, Root: RootMedia,
		Document: mediaDocument("MANGA", mangaFields),
		Fallback: "AniList ID error",
	}
	Top100Manga = Query{
		Name: "getTop100Manga", Kind: models.KindManga, Operation: models.OpTop100, Root: RootPage,
		Document: pageDocument(pageVars, "type: MANGA, sort: SCORE_DESC", mangaFields),
		Fallback: "AniList top 100 error",
	}
	TrendingManga = Query{
		Name: "getTrendingManga", Kind: models.KindManga, Operation: models.OpTrending, Root: RootPage,
		Document: pageDocument(pageVars, "type: MANGA, sort: TRENDING_DESC", mangaFields),
		Fallback: "AniList trending error",
	}
	TopManhwa = Query{
		Name: "getTopManhwa", Kind: models.KindManga, Operation: models.OpTopManhwa, Root: RootPage,
		Document: pageDocument(pageVars, `type: MANGA, countryOfOrigin: "KR", sort: SCORE_DESC`, mangaFields),
		Fallback: "AniList top manhwa error",
	}

	SearchAnime = Query{
		Name: "searchAnime", Kind: models.KindAnime, Operation: models.OpSearch, Root: RootPage,
		Document: pageDocument(searchVars, "search: $search, type: ANIME", animeFullFields),
		Fallback: "AniList search error",
	}
	AnimeByID = Query{
		Name: "getAnimeById", Kind: models.KindAnime, Operation: models.OpByID, Root: RootMedia,
		Document: mediaDocument("ANIME", animeFullFields),
		Fallback: "AniList ID error",
	}
	Top100Anime = Query{
		Name: "getTop100Anime", Kind: models.KindAnime, Operation: models.OpTop100, Root: RootPage,
		Document: pageDocument(pageVars, "type: ANIME, sort: SCORE_DESC", animeListFields),
		Fallback: "AniList top 100 error",
	}
	TrendingAnime = Query{
		Name: "getTrendingAnime", Kind: models.KindAnime, Operation: models.OpTrending, Root: RootPage,
		Document: pageDocument(pageVars, "type: ANIME, sort: TRENDING_DESC", animeListFields),
		Fallback: "AniList trending error",
	}
)

// Catalog lists every query the service can issue.
var Catalog = []Query{
	SearchManga, MangaByID, Top100Manga, TrendingManga, TopManhwa,
	SearchAnime, AnimeByID, Top100Anime, TrendingAnime,
}

// Lookup finds the query for a (kind, operation) pair. Anime has no top-manhwa.
func Lookup(kind models.Kind, op models.Operation) (Query, bool) {
	for _, q := range Catalog {
		if q.Kind == kind && q.Operation == op {
			return q, true
		}
	}
	return Query{}, false
}

// Match finds the catalog query whose document is exactly doc.
func Match(doc string) (Query, bool) {
	for _, q := range Catalog {
		if q.Document == doc {
			return q, true
		}
	}
	return Query{}, false
}
