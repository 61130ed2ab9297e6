// Package geocode resolves street addresses to coordinates with the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var (
	ErrMissingInput    = errors.New("address and API key are required")
	ErrAddressNotFound = errors.New("address not found, please enter a more specific address")
)

type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type response struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup returns the best match for address.
func (c *Client) Lookup(ctx context.Context, address string) (*Location, error) {
	if address == "" || c.apiKey == "" {
		return nil, ErrMissingInput
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding failed: http status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	switch {
	case body.Status == "OK" && len(body.Results) > 0:
		r := body.Results[0]
		return &Location{
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
			FormattedAddress: r.FormattedAddress,
		}, nil
	case body.Status == "ZERO_RESULTS" || body.Status == "OK":
		return nil, ErrAddressNotFound
	default:
		return nil, fmt.Errorf("geocoding failed: %s", body.Status)
	}
}
