package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"recyvoice/internal"
	"recyvoice/internal/config"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(rt roundTripFunc) *Client {
	c := NewClient(config.Config{
		CatalogBaseURL:      "http://catalog.test/api",
		CatalogAPIToken:     "secret-token",
		CatalogTimeoutMs:    1000,
		CatalogRateLimitRPS: 100,
	})
	c.httpClient = &http.Client{Transport: rt}
	return c
}

const categoryBody = `[{
	"id": 7,
	"name": {"en": "Scrap", "ar": "سكراب"},
	"items": [
		{"id": 41, "name": {"en": "Plastics", "ar": "بلاستيك"}, "measurement_unit": 1, "points": 10, "price": 2.5},
		{"id": 42, "name": "Chair", "measurement_unit": 2, "points": 30, "price": 15},
		{"id": 43, "name": {"en": ""}},
		{"name": {"en": "No ID"}}
	]
}]`

func TestFetchItemsEnvelopes(t *testing.T) {
	bodies := map[string]string{
		"bare array": categoryBody,
		"data":       `{"data":` + categoryBody + `}`,
		"categories": `{"categories":` + categoryBody + `}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, body), nil
			})
			items, err := c.FetchItems(context.Background(), "customer")
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if len(items) != 2 {
				t.Fatalf("items=%d, nameless and id-less rows should be skipped", len(items))
			}
			first := items[0]
			if first.ID != "41" || first.EnglishName() != "Plastics" || first.Name["ar"] != "بلاستيك" {
				t.Fatalf("first=%+v", first)
			}
			if first.CategoryID != "7" || first.CategoryName != "Scrap" {
				t.Fatalf("category fields=%+v", first)
			}
			if first.MeasurementUnit != 1 || first.Points != 10 || first.Price != 2.5 {
				t.Fatalf("numeric fields=%+v", first)
			}
			if items[1].EnglishName() != "Chair" {
				t.Fatalf("plain-string name should project to en, got %+v", items[1])
			}
		})
	}
}

func TestFetchItemsSubcategories(t *testing.T) {
	body := `[{
		"id": 1,
		"name": {"en": "Appliances"},
		"subcategories": [
			{"id": 11, "name": {"en": "Washing Machine"}, "measurement_unit": 2}
		]
	}]`
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, body), nil
	})
	items, err := c.FetchItems(context.Background(), "customer")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 || items[0].EnglishName() != "Washing Machine" {
		t.Fatalf("items=%+v", items)
	}
}

func TestFetchItemsRequestShape(t *testing.T) {
	var seen *http.Request
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		seen = req
		return jsonResponse(200, `[]`), nil
	})
	if _, err := c.FetchItems(context.Background(), "buyer"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if seen.URL.Path != "/api/categories" {
		t.Fatalf("path=%s", seen.URL.Path)
	}
	if got := seen.URL.Query().Get("role"); got != "buyer" {
		t.Fatalf("role param=%q", got)
	}
	if got := seen.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Fatalf("auth header=%q", got)
	}
}

func TestFetchItemsRetriesServerErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts < 3 {
			return jsonResponse(503, `oops`), nil
		}
		return jsonResponse(200, categoryBody), nil
	})
	items, err := c.FetchItems(context.Background(), "customer")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts=%d", attempts)
	}
	if len(items) != 2 {
		t.Fatalf("items=%d", len(items))
	}
}

func TestFetchItemsNonRetryableStatus(t *testing.T) {
	attempts := 0
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(404, `not found`), nil
	})
	_, err := c.FetchItems(context.Background(), "customer")
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("404 should not retry, attempts=%d", attempts)
	}
	var ce *internal.CatalogError
	if !errors.As(err, &ce) || ce.Role != "customer" {
		t.Fatalf("expected CatalogError for role, got %v", err)
	}
}

func TestFetchItemsBadPayload(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"unexpected": true}`), nil
	})
	_, err := c.FetchItems(context.Background(), "customer")
	var ce *internal.CatalogError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CatalogError, got %v", err)
	}
}
