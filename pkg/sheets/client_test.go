package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/plusiam/sisu/pkg/errors"
)

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	return appErr.Code
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"t-1","name":"김전담","type":"specialist","grades":[3,4],"subjects":["음악"],"updatedAt":1725000000}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	rows, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "김전담", rows[0].Name)
	assert.Equal(t, []int{3, 4}, rows[0].Grades)
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSyncServer.Code, errorCode(t, err))
}

func TestClientFetchEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"권한이 없습니다"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSyncServer.Code, errorCode(t, err))
	assert.Contains(t, err.Error(), "권한이 없습니다")
}

func TestClientFetchRejectsMalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":"","name":""}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSyncValidation.Code, errorCode(t, err))
}

func TestClientFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSyncTimeout.Code, errorCode(t, err))
}

func TestClientFetchNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	code := errorCode(t, err)
	assert.Contains(t, []string{appErrors.ErrSyncNetwork.Code, appErrors.ErrSyncTimeout.Code}, code)
}

func TestClientPush(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Method
		w.Write([]byte(`{"success":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	err := client.Push(context.Background(), []RosterRow{{ID: "t-1", Name: "김전담", Type: "specialist"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, received)
}
