package team5api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"travel-panel/internal/domain"
	"travel-panel/internal/infra/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client, srv
}

func TestDoDecodesJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/team5/api/recommendations/popular/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("query string lost: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"mediaId":"m1"}]}`))
	})
	result, err := client.Do(context.Background(), domain.RequestDescriptor{
		Endpoint: "/team5/api/recommendations/popular/?limit=5&userId=u1",
		Method:   http.MethodGet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != 200 {
		t.Fatalf("expected 200, got %d", result.Status)
	}
	obj, ok := result.Payload.(map[string]any)
	if !ok {
		t.Fatalf("expected a decoded object, got %T", result.Payload)
	}
	if _, ok := obj["items"].([]any); !ok {
		t.Fatalf("items list lost in decoding: %+v", obj)
	}
}

func TestDoRecordsPerOperationMetrics(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := client.Do(context.Background(), domain.RequestDescriptor{
		Endpoint:  "/team5/api/recommendations/occasions/",
		Operation: "occasions",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.BackendRequestTotal)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() != "backend_request_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" && label.GetValue() == "occasions" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("resolved actions must keep their own operation label")
	}
}

func TestDoFallsBackToRawText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	result, err := client.Do(context.Background(), domain.RequestDescriptor{Endpoint: "/team5/ping/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, ok := result.Payload.(string); !ok || text != "pong" {
		t.Fatalf("undecodable bodies fall back to raw text, got %#v", result.Payload)
	}
}

func TestSubmitFeedbackNonOKDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"duplicate feedback"}`))
	})
	err := client.SubmitFeedback(context.Background(), domain.FeedbackSubmission{UserID: "u1", Liked: true})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail != "duplicate feedback" || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestTrainNonJSONResponse(t *testing.T) {
	body := strings.Repeat("x", 200)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	_, err := client.Train(context.Background())
	if err == nil {
		t.Fatalf("expected a non-JSON error")
	}
	if !strings.Contains(err.Error(), "non-JSON response: ") {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(err.Error(), strings.Repeat("x", 141)) {
		t.Fatalf("excerpt must be truncated to 140 characters")
	}
}

func TestCurrentUserNonOKMeansAnonymous(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("non-OK means anonymous, got %+v", user)
	}
}

func TestCommentsDecodesItems(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/team5/api/media/m1/comments/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"items":[{"commentId":"c1","mediaId":"m1","text":"great"}]}`))
	})
	comments, err := client.Comments(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 1 || comments[0].CommentID != "c1" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestSessionCredentialsAttached(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "sessionid=abc" {
			t.Errorf("session cookie missing, got %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("request id missing")
		}
		_, _ = w.Write([]byte(`[]`))
	}, WithSessionCookie("sessionid=abc"))
	if _, err := client.Cities(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
