package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

const (
	// DefaultBaseURL is the public ESI endpoint
	DefaultBaseURL = "https://esi.evetech.net/latest"

	defaultUserAgent         = "EVE-Trade/1.0"
	defaultRequestTimeout    = 30 * time.Second
	defaultRequestInterval   = 100 * time.Millisecond
	defaultMaxRetries        = 3
	defaultRetryBaseDelay    = 1 * time.Second
	defaultRateLimitWait     = 60 * time.Second
	defaultMaxRateLimitWaits = 5

	// Response headers used by ESI
	headerPages          = "X-Pages"
	headerRateLimitReset = "X-Esi-Error-Limit-Reset"
)

// ErrRateLimitExhausted is returned when the upstream keeps answering 429
// past the configured number of mandated waits.
var ErrRateLimitExhausted = errors.New("esi: rate limit deferrals exhausted")

// Config holds tunables for the ESI client. Zero values fall back to the
// production defaults above; tests set RequestInterval to 0 to disable
// pacing.
type Config struct {
	BaseURL           string
	UserAgent         string
	RequestTimeout    time.Duration
	RequestInterval   time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RateLimitWait     time.Duration
	MaxRateLimitWaits int
}

// Client is a rate-limited, retrying HTTP client for the ESI API. It
// serializes requests through a single limiter, so one instance issues at
// most one request per configured interval regardless of caller.
type Client struct {
	baseURL           string
	userAgent         string
	httpClient        *http.Client
	limiter           *rate.Limiter
	maxRetries        int
	retryBaseDelay    time.Duration
	rateLimitWait     time.Duration
	maxRateLimitWaits int
	logger            *zap.Logger
}

// New creates an ESI client from cfg, applying defaults for unset fields
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = defaultRateLimitWait
	}
	if cfg.MaxRateLimitWaits == 0 {
		cfg.MaxRateLimitWaits = defaultMaxRateLimitWaits
	}

	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:           rate.NewLimiter(limit, 1),
		maxRetries:        cfg.MaxRetries,
		retryBaseDelay:    cfg.RetryBaseDelay,
		rateLimitWait:     cfg.RateLimitWait,
		maxRateLimitWaits: cfg.MaxRateLimitWaits,
		logger:            logger,
	}
}

// get fetches one URL with rate limiting, 429 deferral and transient-error
// retry, decoding the body into out. A 2xx response with a body that does
// not decode is a failed attempt like any other transient error. Returns
// the X-Pages value (1 when the header is absent).
func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out interface{}) (int, error) {
	pages := 1

	operation := func() error {
		body, p, err := c.doOnce(ctx, path, query, token)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		pages = p
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, fmt.Errorf("esi request %s failed after %d attempts: %w", path, c.maxRetries, err)
	}

	return pages, nil
}

// doOnce performs a single admitted request. A 429 response is not counted
// as a failed attempt: the mandated wait is honoured and the request is
// reissued, up to maxRateLimitWaits deferrals.
func (c *Client) doOnce(ctx context.Context, path string, query url.Values, token string) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	deferrals := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, 0, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := c.rateLimitReset(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			deferrals++
			if deferrals > c.maxRateLimitWaits {
				return nil, 0, backoff.Permanent(fmt.Errorf("%w: %s", ErrRateLimitExhausted, path))
			}

			c.logger.Warn("ESI rate limited, waiting",
				zap.String("path", path),
				zap.Duration("wait", wait),
				zap.Int("deferral", deferrals))

			if err := sleepContext(ctx, wait); err != nil {
				return nil, 0, backoff.Permanent(err)
			}
			continue
		}

		bodyBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.Warn("ESI error response",
				zap.String("path", path),
				zap.Int("statusCode", resp.StatusCode))
			return nil, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if readErr != nil {
			return nil, 0, fmt.Errorf("failed to read response body: %w", readErr)
		}

		pages := 1
		if v := resp.Header.Get(headerPages); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				pages = n
			}
		}

		return bodyBytes, pages, nil
	}
}

// rateLimitReset reads the mandated wait from the 429 response, falling
// back to the configured default when the header is absent or unparseable
func (c *Client) rateLimitReset(resp *http.Response) time.Duration {
	v := resp.Header.Get(headerRateLimitReset)
	if v == "" {
		return c.rateLimitWait
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return c.rateLimitWait
	}
	return time.Duration(seconds) * time.Second
}

// getJSON fetches a single-page resource and decodes it into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, token string, out interface{}) error {
	_, err := c.get(ctx, path, query, token, out)
	return err
}

// collectPaged walks a paginated collection endpoint to completion: page 1
// first, then pages 2..N per the X-Pages header, concatenating item arrays
// in page order. Any page failure fails the whole collection.
func (c *Client) collectPaged(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("page", "1")

	var items []json.RawMessage
	pages, err := c.get(ctx, path, q, "", &items)
	if err != nil {
		return nil, err
	}

	for page := 2; page <= pages; page++ {
		q.Set("page", strconv.Itoa(page))
		var pageItems []json.RawMessage
		if _, err := c.get(ctx, path, q, "", &pageItems); err != nil {
			return nil, err
		}
		items = append(items, pageItems...)
	}

	return items, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchRegionIDs retrieves all region identifiers
func (c *Client) FetchRegionIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, "/universe/regions/", nil, "", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// FetchRegion retrieves detail for one region
func (c *Client) FetchRegion(ctx context.Context, regionID int64) (*model.ESIRegion, error) {
	var region model.ESIRegion
	path := fmt.Sprintf("/universe/regions/%d/", regionID)
	if err := c.getJSON(ctx, path, nil, "", &region); err != nil {
		return nil, err
	}
	return &region, nil
}

// FetchConstellation retrieves detail for one constellation
func (c *Client) FetchConstellation(ctx context.Context, constellationID int64) (*model.ESIConstellation, error) {
	var constellation model.ESIConstellation
	path := fmt.Sprintf("/universe/constellations/%d/", constellationID)
	if err := c.getJSON(ctx, path, nil, "", &constellation); err != nil {
		return nil, err
	}
	return &constellation, nil
}

// FetchSystem retrieves detail for one solar system
func (c *Client) FetchSystem(ctx context.Context, systemID int64) (*model.ESISystem, error) {
	var system model.ESISystem
	path := fmt.Sprintf("/universe/systems/%d/", systemID)
	if err := c.getJSON(ctx, path, nil, "", &system); err != nil {
		return nil, err
	}
	return &system, nil
}

// FetchStation retrieves detail for one NPC station
func (c *Client) FetchStation(ctx context.Context, stationID int64) (*model.ESIStation, error) {
	var station model.ESIStation
	path := fmt.Sprintf("/universe/stations/%d/", stationID)
	if err := c.getJSON(ctx, path, nil, "", &station); err != nil {
		return nil, err
	}
	return &station, nil
}

// FetchStationsInRegion walks region -> constellations -> systems ->
// stations and returns every station discovered, tagged with its system and
// region
func (c *Client) FetchStationsInRegion(ctx context.Context, regionID int64) ([]model.Station, error) {
	region, err := c.FetchRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	var stations []model.Station
	for _, constellationID := range region.Constellations {
		constellation, err := c.FetchConstellation(ctx, constellationID)
		if err != nil {
			return nil, err
		}

		for _, systemID := range constellation.Systems {
			system, err := c.FetchSystem(ctx, systemID)
			if err != nil {
				return nil, err
			}

			for _, stationID := range system.Stations {
				station, err := c.FetchStation(ctx, stationID)
				if err != nil {
					return nil, err
				}

				stations = append(stations, model.Station{
					StationID:   stationID,
					StationName: station.Name,
					SystemID:    systemID,
					SystemName:  system.Name,
					RegionID:    regionID,
				})
			}
		}
	}

	return stations, nil
}

// FetchMarketGroupIDs retrieves all market group identifiers
func (c *Client) FetchMarketGroupIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, "/markets/groups/", nil, "", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// FetchMarketGroup retrieves detail for one market group
func (c *Client) FetchMarketGroup(ctx context.Context, groupID int64) (*model.ESIMarketGroup, error) {
	var group model.ESIMarketGroup
	path := fmt.Sprintf("/markets/groups/%d/", groupID)
	if err := c.getJSON(ctx, path, nil, "", &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// FetchType retrieves detail for one item type
func (c *Client) FetchType(ctx context.Context, typeID int64) (*model.ESIType, error) {
	var typeInfo model.ESIType
	path := fmt.Sprintf("/universe/types/%d/", typeID)
	if err := c.getJSON(ctx, path, nil, "", &typeInfo); err != nil {
		return nil, err
	}
	return &typeInfo, nil
}

// FetchRegionOrders retrieves the full paginated market order set for a
// region
func (c *Client) FetchRegionOrders(ctx context.Context, regionID int64) ([]model.ESIOrder, error) {
	path := fmt.Sprintf("/markets/%d/orders/", regionID)
	raw, err := c.collectPaged(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	orders := make([]model.ESIOrder, 0, len(raw))
	for i, item := range raw {
		var order model.ESIOrder
		if err := json.Unmarshal(item, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order at index %d: %w", i, err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// FetchStructure retrieves authenticated detail for one player structure
func (c *Client) FetchStructure(ctx context.Context, structureID int64, token string) (*model.ESIStructure, error) {
	var structure model.ESIStructure
	path := fmt.Sprintf("/universe/structures/%d/", structureID)
	if err := c.getJSON(ctx, path, nil, token, &structure); err != nil {
		return nil, err
	}
	return &structure, nil
}
