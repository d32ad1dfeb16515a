package backendhttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parceltrack/internal/adapters/out/backendhttp"
	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPushStatus(t *testing.T) {
	t.Run("should put the status to the delivery request resource", func(t *testing.T) {
		deliveryID := kernel.NewUUID()
		var gotMethod, gotPath string
		var gotBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		err := client.PushStatus(context.Background(), deliveryID, delivery.StatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/delivery/requests/"+deliveryID.String()+"/status", gotPath)
		assert.Equal(t, map[string]string{"status": "accepted"}, gotBody)
	})

	t.Run("should surface a conflict with the backend status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		err := client.PushStatus(context.Background(), kernel.NewUUID(), delivery.StatusAccepted)

		var conflictErr *errs.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "accepted", conflictErr.Local)
		assert.Equal(t, "cancelled", conflictErr.Remote)
	})

	t.Run("should surface a conflict even without a parseable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		err := client.PushStatus(context.Background(), kernel.NewUUID(), delivery.StatusPickedUp)

		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("should return not found for an unknown delivery", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		err := client.PushStatus(context.Background(), kernel.NewUUID(), delivery.StatusAccepted)

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should fail on an unexpected response code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		err := client.PushStatus(context.Background(), kernel.NewUUID(), delivery.StatusAccepted)

		assert.Error(t, err)
	})
}

func TestClientFetchStatus(t *testing.T) {
	t.Run("should parse the backend status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "picked_up"})
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		status, err := client.FetchStatus(context.Background(), kernel.NewUUID())

		require.NoError(t, err)
		assert.Equal(t, delivery.StatusPickedUp, status)
	})

	t.Run("should return not found for an unknown delivery", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		_, err := client.FetchStatus(context.Background(), kernel.NewUUID())

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should fail on a status name it does not know", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "teleported"})
		}))
		defer server.Close()
		client := backendhttp.NewClient(server.URL, nil)

		_, err := client.FetchStatus(context.Background(), kernel.NewUUID())

		assert.Error(t, err)
	})
}
