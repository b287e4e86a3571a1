package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGeoBaseURL = "http://ip-api.com/json"

// IPLocator resolves the host's coordinate from a geo-IP endpoint.
// Authorization is decided by deployment configuration: the locator is
// constructed with the level the operator granted, or none.
type IPLocator struct {
	BaseURL    string
	Granted    Level // empty means not authorized
	Restricted bool  // refuse with "restricted" instead of "denied"

	httpClient *http.Client
}

// NewIPLocator creates a locator granted the given level.
// A nil client uses http.DefaultClient.
func NewIPLocator(granted Level, hc *http.Client) *IPLocator {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &IPLocator{
		BaseURL:    defaultGeoBaseURL,
		Granted:    granted,
		httpClient: hc,
	}
}

// RequestAuthorization implements Service.
func (l *IPLocator) RequestAuthorization(_ context.Context, _ Level) (Level, error) {
	if l.Restricted {
		return "", &AuthorizationError{Reason: AuthorizationRestricted}
	}
	if l.Granted == "" {
		return "", &AuthorizationError{Reason: AuthorizationDenied}
	}
	return l.Granted, nil
}

type geoIPResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// SingleCoordinate implements Service.
func (l *IPLocator) SingleCoordinate(ctx context.Context) (Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL, nil)
	if err != nil {
		return Coordinate{}, &Error{Kind: ErrorUnknown, Err: err}
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Coordinate{}, &Error{Kind: ErrorNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, &Error{Kind: ErrorNetwork, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinate{}, &Error{Kind: ErrorNetwork, Err: err}
	}

	var geo geoIPResponse
	if err := json.Unmarshal(data, &geo); err != nil {
		return Coordinate{}, &Error{Kind: ErrorLocationUnknown, Err: err}
	}
	if geo.Status != "success" {
		return Coordinate{}, &Error{Kind: ErrorLocationUnknown, Err: fmt.Errorf("lookup failed: %s", geo.Message)}
	}

	return Coordinate{Latitude: geo.Lat, Longitude: geo.Lon}, nil
}
