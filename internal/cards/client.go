package cards

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/youruser/pokedeck/internal/util"
)

var tracer = otel.Tracer("github.com/youruser/pokedeck/internal/cards")

// DefaultPageSize is the number of cards requested per catalog page.
const DefaultPageSize = 27

// Query selects one page of catalog search results.
type Query struct {
	Name     string
	Page     int
	PageSize int
}

// Fetcher fetches one page of cards.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]Card, error)
}

// Client talks to a cards API exposing GET /cards.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = util.NewHTTPClient(0)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// RequestPath renders the request path and query for q, for example
// /cards?page=1&name=picles&pageSize=27.
func RequestPath(q Query) string {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return "/cards?page=" + strconv.Itoa(q.Page) +
		"&name=" + url.QueryEscape(q.Name) +
		"&pageSize=" + strconv.Itoa(pageSize)
}

func (c *Client) Fetch(ctx context.Context, q Query) ([]Card, error) {
	ctx, span := tracer.Start(ctx, "cards.Fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("cards.name", q.Name), attribute.Int("cards.page", q.Page))

	var resp Response
	if err := util.GetJSON(ctx, c.http, c.baseURL+RequestPath(q), &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("fetch cards page %d: %w", q.Page, err)
	}
	if resp.Cards == nil {
		return []Card{}, nil
	}
	return resp.Cards, nil
}
