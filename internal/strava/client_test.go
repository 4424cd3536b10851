package strava

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	c := NewClientWithBaseURL(ts, srv.URL)
	c.rateLimiter.minInterval = 0
	return c
}

func TestGetAthlete(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/athlete" {
			t.Errorf("path = %s, want /athlete", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{
			"id": 42, "firstname": "Ann", "lastname": "Rider", "ftp": 250,
			"bikes": [{"id": "b1", "name": "Roadie", "distance": 1200000, "converted_distance": 1200, "retired": false}]
		}`)
	}))

	athlete, err := c.GetAthlete(context.Background())
	if err != nil {
		t.Fatalf("GetAthlete() error = %v", err)
	}
	if athlete.ID != 42 || athlete.Firstname != "Ann" || athlete.FTP != 250 {
		t.Errorf("athlete = %+v", athlete)
	}
	if len(athlete.Bikes) != 1 || athlete.Bikes[0].ConvertedDistance != 1200 {
		t.Errorf("bikes = %+v", athlete.Bikes)
	}
}

func TestGetActivitiesParams(t *testing.T) {
	after := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("after") != fmt.Sprint(after.Unix()) {
			t.Errorf("after = %s, want %d", q.Get("after"), after.Unix())
		}
		if q.Get("page") != "2" || q.Get("per_page") != "50" {
			t.Errorf("page/per_page = %s/%s", q.Get("page"), q.Get("per_page"))
		}
		fmt.Fprint(w, `[{"id": 100, "sport_type": "Ride", "gear_id": "b1", "suffer_score": 55}]`)
	}))

	activities, err := c.GetActivities(context.Background(), after, 2, 50)
	if err != nil {
		t.Fatalf("GetActivities() error = %v", err)
	}
	if len(activities) != 1 || activities[0].GearID != "b1" || activities[0].SufferScore != 55 {
		t.Errorf("activities = %+v", activities)
	}
}

func TestGetAllActivitiesPaginates(t *testing.T) {
	pages := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		page := r.URL.Query().Get("page")
		if page == "1" {
			// a full page forces a second fetch
			fmt.Fprint(w, "[")
			for i := 0; i < 100; i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"id": %d}`, i+1)
			}
			fmt.Fprint(w, "]")
			return
		}
		fmt.Fprint(w, `[{"id": 101}]`)
	}))

	var progress []int
	activities, err := c.GetAllActivities(context.Background(), time.Time{}, func(fetched int) {
		progress = append(progress, fetched)
	})
	if err != nil {
		t.Fatalf("GetAllActivities() error = %v", err)
	}
	if len(activities) != 101 {
		t.Errorf("got %d activities, want 101", len(activities))
	}
	if pages != 2 {
		t.Errorf("server saw %d pages, want 2", pages)
	}
	if len(progress) != 2 || progress[1] != 101 {
		t.Errorf("progress = %v", progress)
	}
}

func TestAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Rate Limit Exceeded", http.StatusTooManyRequests)
	}))

	_, err := c.GetActivities(context.Background(), time.Time{}, 1, 100)
	if err == nil {
		t.Fatal("GetActivities() error = nil, want API error")
	}
}

func TestRateLimiterHeaders(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Limit", "100,1000")
	h.Set("X-RateLimit-Usage", "34, 512")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != 66 {
		t.Errorf("short remaining = %d, want 66", short)
	}
	if daily != 488 {
		t.Errorf("daily remaining = %d, want 488", daily)
	}
}

func TestRateLimiterIgnoresMalformedHeaders(t *testing.T) {
	r := NewRateLimiter()
	h := http.Header{}
	h.Set("X-RateLimit-Usage", "garbage")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != 100 || daily != 1000 {
		t.Errorf("remaining = %d/%d, want untouched 100/1000", short, daily)
	}
}
