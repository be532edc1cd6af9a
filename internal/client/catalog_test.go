package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/florapedia/api/internal/client"
	"github.com/florapedia/api/internal/model"
)

func TestCatalogClient_GetPlantByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plants/detail/p1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(model.Plant{
			ID:             "p1",
			ScientificName: "Monstera deliciosa",
			Family:         model.Family{ID: "f1", Name: "Araceae"},
			CommonNames:    []string{"Swiss cheese plant"},
		})
	}))
	defer srv.Close()

	c := client.NewCatalogClient(srv.URL)
	plant, err := c.GetPlantByID(context.Background(), "p1", "tok-1")
	if err != nil {
		t.Fatalf("GetPlantByID() error = %v", err)
	}
	if plant.ScientificName != "Monstera deliciosa" || plant.Family.Name != "Araceae" {
		t.Errorf("unexpected plant %+v", plant)
	}
}

func TestCatalogClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"plant not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := client.NewCatalogClient(srv.URL)
	_, err := c.GetPlantByID(context.Background(), "missing", "tok")
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCatalogClient_Moderate(t *testing.T) {
	t.Run("sends decision and returns updated record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("method = %q", r.Method)
			}
			if r.URL.Path != "/api/contributes/moderate/c1" {
				t.Errorf("path = %q", r.URL.Path)
			}
			var body struct {
				Action  string `json:"action"`
				Message string `json:"message"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Action != model.StatusRejected || body.Message != "low quality photos" {
				t.Errorf("body = %+v", body)
			}
			json.NewEncoder(w).Encode(model.Contribution{
				ID:            "c1",
				Status:        model.StatusRejected,
				ReviewMessage: body.Message,
			})
		}))
		defer srv.Close()

		c := client.NewCatalogClient(srv.URL)
		updated, err := c.Moderate(context.Background(), "c1", model.StatusRejected, "low quality photos", "tok")
		if err != nil {
			t.Fatalf("Moderate() error = %v", err)
		}
		if updated.Status != model.StatusRejected {
			t.Errorf("status = %q", updated.Status)
		}
	})

	t.Run("server error is not a NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := client.NewCatalogClient(srv.URL)
		_, err := c.Moderate(context.Background(), "c1", model.StatusApproved, "", "tok")
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, client.ErrNotFound) {
			t.Errorf("500 classified as NotFound: %v", err)
		}
	})
}
