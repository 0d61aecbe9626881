// Package apiclient is a small client for this service's own REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anilistapi/pkg/models"
)

const DefaultBaseURL = "http://localhost:3000"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Listing is a decoded paged envelope.
type Listing struct {
	Pagination models.PageInfo      `json:"pagination"`
	Results    []models.MediaRecord `json:"results"`
	Cached     bool                 `json:"cached"`
}

// APIError is a {success:false} response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Cached     bool                 `json:"cached"`
	Pagination *models.PageInfo     `json:"pagination"`
	Results    []models.MediaRecord `json:"results"`
	Manga      *models.MediaRecord  `json:"manga"`
	Anime      *models.MediaRecord  `json:"anime"`
}

// List calls one of the paged routes. search is only used by OpSearch.
func (c *Client) List(ctx context.Context, kind models.Kind, op models.Operation, search string, page, perPage int) (*Listing, error) {
	if !op.Paged() {
		return nil, fmt.Errorf("operation %s is not paged", op)
	}

	path := "/" + string(kind) + "/" + string(op)
	if op == models.OpSearch {
		path = "/" + string(kind) + "/search/" + url.PathEscape(search)
	}

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}

	var env envelope
	if err := c.doJSON(ctx, path, q, &env); err != nil {
		return nil, err
	}
	out := &Listing{Results: env.Results, Cached: env.Cached}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return out, nil
}

// Get fetches one entry by id and reports whether it came from the cache.
func (c *Client) Get(ctx context.Context, kind models.Kind, id int) (*models.MediaRecord, bool, error) {
	var env envelope
	if err := c.doJSON(ctx, "/"+string(kind)+"/"+strconv.Itoa(id), nil, &env); err != nil {
		return nil, false, err
	}
	rec := env.Manga
	if kind == models.KindAnime {
		rec = env.Anime
	}
	if rec == nil {
		return nil, false, fmt.Errorf("response has no %s", kind)
	}
	return rec, env.Cached, nil
}

func (c *Client) doJSON(ctx context.Context, path string, q url.Values, out *envelope) error {
	endpoint := c.BaseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("GET %s failed: %s", endpoint, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if !out.Success || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: out.Message}
	}
	return nil
}
