package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"droughtwatch/internal/types"
)

// openWeatherAPIBase is the default OpenWeather API base URL. Overridable in
// tests via OpenWeatherClientConfig.BaseURL.
const openWeatherAPIBase = "https://api.openweathermap.org/data/2.5"

// msToKmh converts OpenWeather's metric wind speed (m/s) to the km/h that
// triggers and alert emails use.
const msToKmh = 3.6

// OpenWeatherClientConfig holds the configuration for creating an
// OpenWeatherClient.
type OpenWeatherClientConfig struct {
	APIKey  string
	BaseURL string // Override for testing; defaults to openWeatherAPIBase
	Logger  *slog.Logger
}

// OpenWeatherClient implements WeatherProvider against the OpenWeather
// current-weather and forecast endpoints. Two calls are made per snapshot:
// /weather for current conditions and /forecast for the next 24h of rainfall
// (eight 3-hour intervals summed into one rainfall figure).
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewOpenWeatherClient creates a new OpenWeatherClient.
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	base := NewBaseClient(
		httpClient,
		"openweather",
		DefaultRetryPolicy(),
		"DroughtWatch/1.0",
	)
	return newOpenWeatherClient(base, cfg)
}

// NewOpenWeatherClientWithBase creates an OpenWeatherClient with a
// pre-configured BaseClient.
func NewOpenWeatherClientWithBase(base *BaseClient, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	return newOpenWeatherClient(base, cfg)
}

func newOpenWeatherClient(base *BaseClient, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenWeatherClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

type owCurrentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type owForecastResponse struct {
	List []struct {
		Rain struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Current fetches one weather snapshot for the location, metric units, with
// wind speed converted from OpenWeather's m/s to km/h. All four indicator
// fields are populated; OpenWeather reports zero wind and the forecast omits
// the rain block entirely on dry intervals, both of which decode to real zero
// readings rather than missing fields.
func (c *OpenWeatherClient) Current(ctx context.Context, location string) (types.WeatherSnapshot, error) {
	var current owCurrentResponse
	if err := c.getJSON(ctx, "/weather", url.Values{
		"q":     {location},
		"appid": {c.apiKey},
		"units": {"metric"},
	}, &current); err != nil {
		return types.WeatherSnapshot{}, err
	}

	var forecast owForecastResponse
	if err := c.getJSON(ctx, "/forecast", url.Values{
		"q":     {location},
		"appid": {c.apiKey},
		"units": {"metric"},
		"cnt":   {"8"},
	}, &forecast); err != nil {
		return types.WeatherSnapshot{}, err
	}

	var rainfall24h float64
	for _, interval := range forecast.List {
		rainfall24h += interval.Rain.ThreeHour
	}

	c.logger.DebugContext(ctx, "weather snapshot fetched",
		"location", location,
		"temperature", current.Main.Temp,
		"humidity", current.Main.Humidity,
		"rainfall_24h", rainfall24h,
	)

	temp := current.Main.Temp
	humidity := current.Main.Humidity
	wind := current.Wind.Speed * msToKmh
	return types.WeatherSnapshot{
		Temperature: &temp,
		Rainfall:    &rainfall24h,
		Humidity:    &humidity,
		WindSpeed:   &wind,
	}, nil
}

func (c *OpenWeatherClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "failed to create weather request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "weather provider unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather provider returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "failed to decode weather response", err)
	}
	return nil
}

var _ WeatherProvider = (*OpenWeatherClient)(nil)
var _ EmailProvider = (*SendGridClient)(nil)
