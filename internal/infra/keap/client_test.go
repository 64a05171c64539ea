package keap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertContactCreatesWhenMissing(t *testing.T) {
	var createdBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/contacts":
			assert.Equal(t, "jane@example.com", r.URL.Query().Get("email"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"contacts": []interface{}{}})
		case r.Method == http.MethodPost && r.URL.Path == "/contacts":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createdBody))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": 1234})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL, server.Client())
	id, err := client.UpsertContact(context.Background(), "jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	assert.EqualValues(t, 1234, id)
	assert.Equal(t, "Jane", createdBody["given_name"])
	assert.Equal(t, "Doe", createdBody["family_name"])
}

func TestUpsertContactReusesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Fatal("must not create a duplicate contact")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"contacts": []map[string]interface{}{{"id": 77}},
		})
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL, server.Client())
	id, err := client.UpsertContact(context.Background(), "jane@example.com", "Jane", "Doe")
	require.NoError(t, err)
	assert.EqualValues(t, 77, id)
}

func TestApplyTag(t *testing.T) {
	var gotPath string
	var gotBody map[string][]int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL, server.Client())
	require.NoError(t, client.ApplyTag(context.Background(), 77, 501))
	assert.Equal(t, "/contacts/77/tags", gotPath)
	assert.Equal(t, []int64{501}, gotBody["tagIds"])
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL, server.Client())
	_, err := client.UpsertContact(context.Background(), "jane@example.com", "Jane", "Doe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
