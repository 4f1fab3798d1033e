package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voxxy/internal/model"
)

func TestCreateActivitySendsWrappedPayload(t *testing.T) {
	var gotAuth string
	var body struct {
		Activity map[string]any `json:"activity"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/activities" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42, "activity_type": "Cocktails", "collecting": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	created, err := c.CreateActivity(context.Background(), model.ActivityCreationPayload{
		ActivityType:     "Cocktails",
		ActivityName:     "Cocktail Night",
		ActivityLocation: "Bushwick, Brooklyn, NY",
		DateDay:          model.Unscheduled,
		DateTime:         model.Unscheduled,
		TimeOfDay:        "evening",
		Collecting:       true,
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	if created.ID != 42 || !created.Collecting {
		t.Fatalf("unexpected created activity %+v", created)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if body.Activity["collecting"] != true {
		t.Errorf("expected collecting=true, got %v", body.Activity["collecting"])
	}
	if participants, ok := body.Activity["participants"].([]any); !ok || len(participants) != 0 {
		t.Errorf("expected empty participants array, got %v", body.Activity["participants"])
	}
	if _, ok := body.Activity["group_size"]; ok {
		t.Errorf("group_size should be omitted for a time-of-day activity")
	}
}

func TestRateLimitErrorCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "Too many requests"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").CreateActivity(context.Background(), model.ActivityCreationPayload{})
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.RetryAfter != 2*time.Minute {
		t.Errorf("expected 2m retry-after, got %v", apiErr.RetryAfter)
	}
	if apiErr.Message != "Too many requests" {
		t.Errorf("expected server message, got %q", apiErr.Message)
	}
}

func TestServerMessageFromErrorsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors": ["Activity name is too long", "Radius is invalid"]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").CreateActivity(context.Background(), model.ActivityCreationPayload{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Activity name is too long, Radius is invalid" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestParseRetryAfterHTTPDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	header := now.Add(90 * time.Second).Format(http.TimeFormat)
	if got := parseRetryAfter(header, now); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	if got := parseRetryAfter("garbage", now); got != 0 {
		t.Fatalf("expected 0 for garbage, got %v", got)
	}
}

func TestPlacesEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/places/search":
			if r.URL.Query().Get("query") != "bush" || r.URL.Query().Get("types") != "geocode" {
				t.Errorf("unexpected search query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"results": [{"place_id": "p1", "description": "Bushwick, Brooklyn, NY", "structured_formatting": {"main_text": "Bushwick", "secondary_text": "Brooklyn, NY"}}]}`))
		case "/api/places/details":
			w.Write([]byte(`{"details": {"place_id": "p1", "formatted_address": "Bushwick, Brooklyn, NY", "geometry": {"location": {"lat": 40.69, "lng": -73.92}}}}`))
		case "/api/places/reverse_geocode":
			if r.URL.Query().Get("lat") != "40.5" {
				t.Errorf("unexpected lat %q", r.URL.Query().Get("lat"))
			}
			w.Write([]byte(`{"results": [{"formatted_address": "Somewhere", "address_components": [{"long_name": "Brooklyn", "types": ["political"]}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	ctx := context.Background()

	suggestions, err := c.SearchPlaces(ctx, "bush", "geocode")
	if err != nil || len(suggestions) != 1 || suggestions[0].MainText != "Bushwick" {
		t.Fatalf("SearchPlaces = %+v, %v", suggestions, err)
	}

	details, err := c.PlaceDetails(ctx, "p1")
	if err != nil || details.Geometry == nil || details.Geometry.Location.Lat != 40.69 {
		t.Fatalf("PlaceDetails = %+v, %v", details, err)
	}

	results, err := c.ReverseGeocode(ctx, 40.5, -73.9)
	if err != nil || len(results) != 1 || results[0].AddressComponents[0].LongName != "Brooklyn" {
		t.Fatalf("ReverseGeocode = %+v, %v", results, err)
	}
}

func TestBlockEndpoints(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/users/blocked":
			w.Write([]byte(`{"blocked_users": [{"id": 7, "name": "Sam"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/users/9/block":
			w.Write([]byte(`{}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/users/7/unblock":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	ctx := context.Background()

	list, err := c.ListBlocked(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Sam" {
		t.Fatalf("ListBlocked = %+v, %v", list, err)
	}
	rec, err := c.BlockUser(ctx, 9)
	if err != nil || rec.ID != 9 {
		t.Fatalf("BlockUser = %+v, %v", rec, err)
	}
	if err := c.UnblockUser(ctx, 7); err != nil {
		t.Fatalf("UnblockUser: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %v", calls)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestTokenHelpers(t *testing.T) {
	now := time.Now()
	expired := signedToken(t, jwt.MapClaims{"user_id": 12, "exp": now.Add(-time.Hour).Unix()})
	fresh := signedToken(t, jwt.MapClaims{"sub": "34", "exp": now.Add(time.Hour).Unix()})

	if !TokenExpired(expired, now) {
		t.Error("expected expired token")
	}
	if TokenExpired(fresh, now) {
		t.Error("expected fresh token")
	}
	if TokenExpired("opaque-rails-token", now) {
		t.Error("opaque tokens are never treated as expired")
	}

	if id, ok := UserIDFromToken(expired); !ok || id != 12 {
		t.Errorf("UserIDFromToken(user_id) = %d, %v", id, ok)
	}
	if id, ok := UserIDFromToken(fresh); !ok || id != 34 {
		t.Errorf("UserIDFromToken(sub) = %d, %v", id, ok)
	}
}
