package onec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"catalog-sync/core/source"

	"golang.org/x/time/rate"
)

const productShortPath = "/rexant/hs/api/v1/product-short"

// Product is the short product representation the 1C API returns.
type Product struct {
	Article string `json:"article"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Country string `json:"country"`
	Unit    string `json:"unit"`
	Class   struct {
		RusName string `json:"rusname"`
	} `json:"sdsclass"`
}

type listResponse struct {
	Result []Product `json:"result"`
}

// Client is a typed HTTP client for the 1C API.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a 1C API client from the configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 180
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		pageSize: pageSize,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// ShortProducts lists the full short-product catalog, walking the
// limit/offset pagination until an empty page is returned.
func (c *Client) ShortProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	offset := 0
	for {
		page, err := c.shortProductPage(ctx, c.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
		offset += c.pageSize
	}
}

func (c *Client) shortProductPage(ctx context.Context, limit, offset int) ([]Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+productShortPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, source.NewFatal(SourceName, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, source.NewTransient(SourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
		// The upstream answers 201 with no body when a page is empty.
		return nil, nil
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, source.NewFatal(SourceName, fmt.Errorf("authentication rejected: %s", resp.Status))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, source.NewTransient(SourceName, fmt.Errorf("upstream unavailable: %s", resp.Status))
	default:
		return nil, source.NewFatal(SourceName, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.NewTransient(SourceName, err)
	}

	var decoded listResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, source.NewFatal(SourceName, fmt.Errorf("malformed payload: %w", err))
	}
	return decoded.Result, nil
}
