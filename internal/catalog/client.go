package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coletaflow/internal"
	"coletaflow/internal/config"
	"coletaflow/internal/util"
)

// Client talks to the ERP product API. Responses are paged with a
// scroll cursor; requests are paced to the configured rate and retry
// on transient status codes.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	pace       *pacer
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type scrollPayload struct {
	Products []map[string]any `json:"products"`
	ScrollID *string          `json:"scrollId"`
	Total    *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ERPTimeoutMs) * time.Millisecond},
		pace:       newPacer(cfg.ERPRateLimitRPS),
	}
}

func (c *Client) GetProductsScrollAll(ctx context.Context) ([]internal.CatalogProduct, error) {
	return c.getProductsScroll(ctx, map[string]string{})
}

// GetProductsIncremental fetches only products the ERP changed within
// the configured lookback window. mode selects the window unit.
func (c *Client) GetProductsIncremental(ctx context.Context, mode string) ([]internal.CatalogProduct, error) {
	params := map[string]string{}
	switch mode {
	case "day":
		params["day"] = strconv.Itoa(c.cfg.ERPLookbackDays)
	case "hour":
		params["hour"] = strconv.Itoa(c.cfg.ERPLookbackHours)
	default:
		return nil, fmt.Errorf("unsupported incremental mode: %s", mode)
	}
	return c.getProductsScroll(ctx, params)
}

func (c *Client) getProductsScroll(ctx context.Context, params map[string]string) ([]internal.CatalogProduct, error) {
	all := make([]internal.CatalogProduct, 0)
	seen := map[string]struct{}{}
	var scrollID string

	for {
		query := map[string]string{}
		for k, v := range params {
			query[k] = v
		}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := c.fetchJSON(ctx, "product/scroll", query)
		if err != nil {
			return nil, err
		}

		var payload scrollPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Products {
			product, err := toCatalogProduct(raw)
			if err != nil {
				continue
			}
			all = append(all, product)
		}

		if payload.ScrollID == nil || *payload.ScrollID == "" || len(payload.Products) == 0 {
			break
		}
		if _, ok := seen[*payload.ScrollID]; ok {
			break
		}
		seen[*payload.ScrollID] = struct{}{}
		scrollID = *payload.ScrollID
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.ERPAPIToken) == "" {
		return nil, errors.New("missing ERP_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.ERPAPIBaseURL, "/") + "/"
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
		c.pace.wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.ERPAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
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
				lastErr = fmt.Errorf("erp status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("erp api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("erp api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("erp request failed")
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

func toCatalogProduct(raw map[string]any) (internal.CatalogProduct, error) {
	code, _ := raw["code"].(string)
	code = strings.TrimSpace(code)
	if code == "" {
		return internal.CatalogProduct{}, errors.New("empty code")
	}

	description, _ := raw["description"].(string)
	description = strings.TrimSpace(description)
	if description == "" {
		description = code
	}

	rawJSON, _ := json.Marshal(raw)
	product := internal.CatalogProduct{
		Code:        code,
		Description: description,
		RawJSON:     string(rawJSON),
	}
	product.Brand = toStringPtr(raw["brand"])
	product.Model = toStringPtr(raw["model"])
	product.UpdatedAt = toStringPtr(raw["updatedAt"])

	return product, nil
}

func toStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return util.StringPtr(s)
}
