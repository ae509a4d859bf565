package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"recyvoice/internal"
	"recyvoice/internal/config"
)

// Client fetches the role-scoped category tree from the backend. The API is
// loose about its envelope: a bare array, {"data":[...]} and
// {"categories":[...]} all occur in the wild. The ambiguity is resolved here
// and nowhere else.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.CatalogRateLimitRPS),
	}
}

// FetchItems returns the flat item list for a role. Transport, status and
// decode failures all surface as CatalogError.
func (c *Client) FetchItems(ctx context.Context, role string) ([]*internal.LiveCatalogItem, error) {
	body, err := c.fetchJSON(ctx, "categories", map[string]string{"role": role})
	if err != nil {
		return nil, &internal.CatalogError{Role: role, Err: err}
	}

	categories, err := decodeCategories(body)
	if err != nil {
		return nil, &internal.CatalogError{Role: role, Err: err}
	}

	items := make([]*internal.LiveCatalogItem, 0, len(categories)*4)
	for _, cat := range categories {
		items = append(items, flattenCategory(cat)...)
	}
	return items, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.CatalogBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		if token := strings.TrimSpace(c.cfg.CatalogAPIToken); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("catalog status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("catalog api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("catalog request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// decodeCategories accepts the three envelope shapes and yields the raw
// category maps.
func decodeCategories(body []byte) ([]map[string]any, error) {
	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Data       []map[string]any `json:"data"`
		Categories []map[string]any `json:"categories"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized categories payload: %w", err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	if wrapped.Categories != nil {
		return wrapped.Categories, nil
	}
	return nil, fmt.Errorf("categories payload has neither data nor categories")
}

func flattenCategory(cat map[string]any) []*internal.LiveCatalogItem {
	catID := toString(cat["id"])
	catName := englishProjection(cat["name"])

	children, ok := cat["items"].([]any)
	if !ok || len(children) == 0 {
		children, _ = cat["subcategories"].([]any)
	}

	out := make([]*internal.LiveCatalogItem, 0, len(children))
	for _, raw := range children {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := toLiveCatalogItem(m, catID, catName)
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

func toLiveCatalogItem(raw map[string]any, categoryID, categoryName string) *internal.LiveCatalogItem {
	name := multilingualName(raw["name"])
	if len(name) == 0 {
		return nil
	}
	id := toString(raw["id"])
	if id == "" {
		return nil
	}

	return &internal.LiveCatalogItem{
		ID:              id,
		Name:            name,
		CategoryID:      categoryID,
		CategoryName:    categoryName,
		MeasurementUnit: toInt(raw["measurement_unit"]),
		Points:          toFloat(raw["points"]),
		Price:           toFloat(raw["price"]),
		Image:           toString(raw["image"]),
	}
}

func multilingualName(v any) map[string]string {
	out := map[string]string{}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out["en"] = s
		}
	case map[string]any:
		for lang, val := range t {
			if s := strings.TrimSpace(toString(val)); s != "" {
				out[lang] = s
			}
		}
	}
	return out
}

func englishProjection(v any) string {
	name := multilingualName(v)
	if s, ok := name["en"]; ok {
		return s
	}
	for _, s := range name {
		return s
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		i, _ := t.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(t))
		return i
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}
