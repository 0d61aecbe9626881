package media

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"anilistapi/internal/anilist"
	"anilistapi/pkg/models"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10

	msgInvalidPaging = "Invalid page or perPage value"
	msgInvalidID     = "Invalid ID"
)

var (
	integerPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)
	leadingInteger = regexp.MustCompile(`^[-+]?[0-9]+`)
)

var (
	ErrInvalidPaging = errors.New(msgInvalidPaging)
	ErrInvalidID     = errors.New(msgInvalidID)
)

// QueryParams is the normalized input of one request. Built per request and
// never mutated afterwards.
type QueryParams struct {
	Kind      models.Kind
	Operation models.Operation
	Search    string
	ID        int
	Page      int
	PerPage   int
}

// ParsePaging reads page/perPage. Only the leading integer counts ("5abc" is
// 5, "20.5" is 20); input without one falls back to the defaults. Values
// below 1 are rejected.
func ParsePaging(rawPage, rawPerPage string) (page, perPage int, err error) {
	page = parseInt(rawPage, DefaultPage)
	perPage = parseInt(rawPerPage, DefaultPerPage)

	p := struct{ Page, PerPage int }{page, perPage}
	err = validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1)),
		validation.Field(&p.PerPage, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return 0, 0, ErrInvalidPaging
	}
	return page, perPage, nil
}

// ParseID accepts base-10 integers only.
func ParseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if err := validation.Validate(raw, validation.Required, validation.Match(integerPattern)); err != nil {
		return 0, ErrInvalidID
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// CacheKey renders the params as the cache key. Anime keys carry an "anime:"
// namespace; by-id keys are "<kind>:<id>".
func (p QueryParams) CacheKey() string {
	if p.Operation == models.OpByID {
		return string(p.Kind) + ":" + strconv.Itoa(p.ID)
	}

	var b strings.Builder
	if p.Kind == models.KindAnime {
		b.WriteString("anime:")
	}
	b.WriteString(string(p.Operation))
	if p.Operation == models.OpSearch {
		b.WriteByte(':')
		b.WriteString(p.Search)
	}
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.PerPage))
	return b.String()
}

func (p QueryParams) Variables() anilist.Variables {
	return anilist.Variables{Search: p.Search, ID: p.ID, Page: p.Page, PerPage: p.PerPage}
}

func parseInt(s string, def int) int {
	digits := leadingInteger.FindString(strings.TrimSpace(s))
	if digits == "" {
		return def
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return def
	}
	return n
}
