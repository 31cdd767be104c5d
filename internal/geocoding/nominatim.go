// Package geocoding resolves coordinates to Indonesian province names.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rekaloka/internal/config"

	"go.uber.org/zap"
)

var (
	// ErrNoState means the provider answered but knows no state for the point
	ErrNoState = errors.New("no administrative region at location")

	// ErrUnavailable wraps network failures and timeouts
	ErrUnavailable = errors.New("geocoding provider unavailable")
)

// NominatimClient performs reverse lookups against an OpenStreetMap
// Nominatim instance
type NominatimClient struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewNominatimClient creates a client with the configured timeout
func NewNominatimClient(cfg config.GeocodingConfig, logger *zap.Logger) *NominatimClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NominatimClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		State string `json:"state"`
	} `json:"address"`
}

// ReverseState returns the raw state name at lat/lon
func (c *NominatimClient) ReverseState(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "5")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geocoding request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isNetworkError(err) {
			c.logger.Warn("Geocoding provider unreachable", zap.Error(err))
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	state := strings.TrimSpace(body.Address.State)
	if state == "" {
		return "", ErrNoState
	}
	return state, nil
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

var regionPrefixes = regexp.MustCompile(`(?i)provinsi|daerah istimewa|dki`)

// CleanRegionName drops administrative prefixes so "Daerah Istimewa
// Yogyakarta" matches a province stored as "Yogyakarta"
func CleanRegionName(state string) string {
	return strings.Join(strings.Fields(regionPrefixes.ReplaceAllString(state, "")), " ")
}
