// Package anilist talks to the AniList GraphQL API.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"anilistapi/pkg/models"
)

const DefaultEndpoint = "https://graphql.anilist.co"

// Client issues one POST per call against a single GraphQL endpoint. No retries.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	tracer   trace.Tracer
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
		tracer:   otel.Tracer("anilistapi/anilist"),
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data struct {
		Page  *models.PageResult  `json:"Page"`
		Media *models.MediaRecord `json:"Media"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Page runs a listing query and returns data.Page.
func (c *Client) Page(ctx context.Context, q Query, vars Variables) (*models.PageResult, error) {
	if q.Root != RootPage {
		return nil, fmt.Errorf("anilist: query %s does not return a Page", q.Name)
	}
	res, err := c.execute(ctx, q, vars)
	if err != nil {
		return nil, err
	}
	if res.Data.Page == nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Status: http.StatusOK, Err: errors.New("response has no data.Page")}
	}
	return res.Data.Page, nil
}

// Media runs a single-entry query and returns data.Media.
func (c *Client) Media(ctx context.Context, q Query, vars Variables) (*models.MediaRecord, error) {
	if q.Root != RootMedia {
		return nil, fmt.Errorf("anilist: query %s does not return a Media", q.Name)
	}
	res, err := c.execute(ctx, q, vars)
	if err != nil {
		return nil, err
	}
	if res.Data.Media == nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Status: http.StatusOK, Err: errors.New("response has no data.Media")}
	}
	return res.Data.Media, nil
}

func (c *Client) execute(ctx context.Context, q Query, vars Variables) (res *response, err error) {
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer("anilistapi/anilist")
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	ctx, span := tracer.Start(ctx, "anilist."+q.Name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("anilist.query", q.Name),
		attribute.String("anilist.kind", string(q.Kind)),
		attribute.String("anilist.operation", string(q.Operation)),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		upstreamDuration.WithLabelValues(q.Name, outcome).Observe(time.Since(start).Seconds())
		span.End()
	}()

	body, err := json.Marshal(request{Query: q.Document, Variables: vars.forOperation(q.Operation)})
	if err != nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Err: fmt.Errorf("request: %w", err)}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	// AniList reports failures (including "Not Found.") as an errors array,
	// usually alongside a non-2xx status.
	if decodeErr == nil && len(out.Errors) > 0 && out.Errors[0].Message != "" {
		return nil, &Error{Query: q.Name, Message: out.Errors[0].Message, Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Status: resp.StatusCode, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200))}
	}
	if decodeErr != nil {
		return nil, &Error{Query: q.Name, Message: q.Fallback, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", decodeErr)}
	}
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
