package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"jamb/models"
	"jamb/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
	maxBodyBytes   = 8 << 20
)

// Product is one item returned by the BigBox API.
type Product struct {
	ItemID   string
	Title    string
	ImageURL string
	Price    float64
	Unit     string
}

// Fetcher retrieves the products described by an import entry.
type Fetcher interface {
	Fetch(ctx context.Context, entry models.ImportEntry) ([]Product, error)
}

// BigBoxClient talks to the BigBox product API.
type BigBoxClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	// Retries is how many times a failed request is repeated.
	Retries int
	Backoff time.Duration
}

func NewBigBoxClient(baseURL, apiKey string) *BigBoxClient {
	return &BigBoxClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retries: defaultRetries,
		Backoff: defaultBackoff,
	}
}

// statusError is a non-2xx answer.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bigbox returned status %d", e.Code)
}

// errRejected marks an answer the API itself declared unsuccessful.
var errRejected = errors.New("bigbox rejected the request")

func retryable(err error) bool {
	if errors.Is(err, errRejected) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	// Anything else that reached here is a transport failure.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *BigBoxClient) Fetch(ctx context.Context, entry models.ImportEntry) ([]Product, error) {
	limit := entry.Limit
	if limit <= 0 {
		limit = defaultEntryLimit
	}

	if entry.SearchTerm != "" {
		body, err := c.get(ctx, url.Values{"type": {"search"}, "search_term": {entry.SearchTerm}})
		if err != nil {
			return nil, err
		}
		products, err := parseSearch(body)
		if err != nil {
			return nil, err
		}
		if len(products) > limit {
			products = products[:limit]
		}
		return products, nil
	}

	var products []Product
	for _, id := range entry.ItemIDs {
		body, err := c.get(ctx, url.Values{"type": {"product"}, "item_id": {id}})
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		p, err := parseProduct(body)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// get performs one API call, retrying transport failures, 5xx and 429 with
// exponential backoff.
func (c *BigBoxClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("api_key", c.APIKey)
	target := c.BaseURL + "?" + params.Encode()

	backoff := c.Backoff
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			utils.GetLogger().Warn("Retrying BigBox request",
				zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *BigBoxClient) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &statusError{Code: http.StatusBadGateway}
	}
	if info := gjson.GetBytes(body, "request_info.success"); info.Exists() && !info.Bool() {
		return nil, fmt.Errorf("%w: %s", errRejected, gjson.GetBytes(body, "request_info.message").String())
	}
	return body, nil
}

func productFrom(p gjson.Result, price gjson.Result) Product {
	image := p.Get("main_image.link").String()
	if image == "" {
		image = p.Get("images.0.link").String()
	}
	unit := p.Get("unit").String()
	if unit == "" {
		unit = "each"
	}
	return Product{
		ItemID:   p.Get("item_id").String(),
		Title:    p.Get("title").String(),
		ImageURL: image,
		Price:    price.Float(),
		Unit:     unit,
	}
}

func parseSearch(body []byte) ([]Product, error) {
	results := gjson.GetBytes(body, "search_results")
	if !results.IsArray() {
		return nil, errors.New("bigbox search response has no search_results")
	}
	var products []Product
	results.ForEach(func(_, r gjson.Result) bool {
		products = append(products, productFrom(r.Get("product"), r.Get("offers.primary.price")))
		return true
	})
	return products, nil
}

func parseProduct(body []byte) (Product, error) {
	p := gjson.GetBytes(body, "product")
	if !p.Exists() {
		return Product{}, errors.New("bigbox product response has no product")
	}
	price := p.Get("buybox_winner.price")
	if !price.Exists() {
		price = gjson.GetBytes(body, "offers.primary.price")
	}
	return productFrom(p, price), nil
}
