package external

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"droughtwatch/internal/types"
)

func TestOpenWeatherClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "key123" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("expected metric units")
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/weather":
			w.Write([]byte(`{"main":{"temp":27.5,"humidity":65},"wind":{"speed":4.2}}`))
		case "/forecast":
			// Two wet intervals, six dry ones with no rain block at all.
			w.Write([]byte(`{"list":[{"rain":{"3h":0.8}},{"rain":{"3h":0.4}},{},{},{},{},{},{}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewOpenWeatherClient(srv.Client(), OpenWeatherClientConfig{
		APIKey:  "key123",
		BaseURL: srv.URL,
	})

	snapshot, err := client.Current(context.Background(), "Christchurch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.Temperature == nil || *snapshot.Temperature != 27.5 {
		t.Errorf("unexpected temperature: %v", snapshot.Temperature)
	}
	if snapshot.Humidity == nil || *snapshot.Humidity != 65 {
		t.Errorf("unexpected humidity: %v", snapshot.Humidity)
	}
	if snapshot.Rainfall == nil || math.Abs(*snapshot.Rainfall-1.2) > 1e-9 {
		t.Errorf("unexpected rainfall: %v", snapshot.Rainfall)
	}
	// 4.2 m/s from the provider, converted to km/h.
	if snapshot.WindSpeed == nil || math.Abs(*snapshot.WindSpeed-15.12) > 1e-9 {
		t.Errorf("unexpected wind speed: %v", snapshot.WindSpeed)
	}
}

func TestOpenWeatherClient_UpstreamErrorMapsToWeatherCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewOpenWeatherClient(srv.Client(), OpenWeatherClientConfig{
		APIKey:  "bad",
		BaseURL: srv.URL,
	})

	_, err := client.Current(context.Background(), "Christchurch")
	if err == nil {
		t.Fatal("expected an error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamWeather {
		t.Errorf("expected %s, got %s", types.ErrCodeUpstreamWeather, appErr.Code)
	}
}
