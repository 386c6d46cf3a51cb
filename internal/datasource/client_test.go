package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) DataSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Config{Endpoint: srv.URL, APIToken: "tok-123", TimeoutMs: 2000})
}

func TestReleases_Success(t *testing.T) {
	var gotPath, gotAuth string
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Release{{ID: "rel-1", Name: "Q3 Launch"}})
	})

	releases, err := ds.Releases(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "rel-1", releases[0].ID)
	assert.Equal(t, "/api/products/prod-1/releases", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestBudget_NotFound(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := ds.Budget(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransient(err))
}

func TestReleases_ServerErrorIsTransient(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := ds.Releases(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestReleases_RateLimitIsTransient(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := ds.Releases(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestReleases_ClientErrorIsFatal(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := ds.Releases(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestReleases_MalformedBodyIsFatal(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	})

	_, err := ds.Releases(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestReleases_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	ds := NewHTTPClient(Config{Endpoint: endpoint, TimeoutMs: 500})
	_, err := ds.Releases(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestStatuses_ProductFilter(t *testing.T) {
	var gotQuery string
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.StatusOption{{ID: "st-1", Name: "In Progress"}})
	})

	statuses, err := ds.Statuses(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "product=prod-1", gotQuery)
}

func TestSaveBudget(t *testing.T) {
	var gotMethod, gotScope string
	var gotDoc domain.ProductBudgetDocument
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotScope = r.URL.Query().Get("scope")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		w.WriteHeader(http.StatusNoContent)
	})

	doc := &domain.ProductBudgetDocument{ProductID: "prod-1", TotalBudget: 76320}
	err := ds.SaveBudget(context.Background(), "prod-1", doc, ScopeProduct)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, string(ScopeProduct), gotScope)
	assert.Equal(t, "prod-1", gotDoc.ProductID)
	assert.Equal(t, 76320.0, gotDoc.TotalBudget)
}

func TestSaveBudget_RemoteFailure(t *testing.T) {
	ds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := ds.SaveBudget(context.Background(), "prod-1", &domain.ProductBudgetDocument{}, ScopeRelease)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
