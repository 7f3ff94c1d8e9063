package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) BackendClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewBackendClient(server.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func testSession() *domain.Session {
	return &domain.Session{UID: "uid-1", Role: domain.RoleAdmin, BackendCookie: "session=abc123"}
}

func TestNewBackendClientRejectsInvalidURL(t *testing.T) {
	_, err := NewBackendClient("not a url", time.Second, nil)
	assert.Error(t, err)
}

// Кука бэкенда подкладывается в каждый аутентифицированный запрос.
func TestRequestsCarrySessionCookie(t *testing.T) {
	var gotCookie string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`[]`))
	})

	_, err := client.ListUsers(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, "session=abc123", gotCookie)
}

// 404 на списках означает пустую коллекцию, а не ошибку.
func TestListUsersNotFoundMeansEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	users, err := client.ListUsers(context.Background(), testSession())
	require.NoError(t, err, "404 on a list read must not be an error")
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListReservationsNotFoundMeansEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	reservations, err := client.ListReservations(context.Background(), testSession())
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

// 404 на мутации остается ошибкой для пользователя.
func TestGetResourceNotFoundIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetResource(context.Background(), testSession(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusErrorMapping(t *testing.T) {
	assert.ErrorIs(t, statusError(http.StatusUnauthorized, nil), domain.ErrUnauthorized)
	assert.ErrorIs(t, statusError(http.StatusForbidden, nil), domain.ErrForbidden)
	assert.ErrorIs(t, statusError(http.StatusNotFound, nil), domain.ErrNotFound)
	assert.ErrorIs(t, statusError(http.StatusBadRequest, nil), domain.ErrValidation)

	// Детали 400 подмешиваются в текст
	err := statusError(http.StatusBadRequest, []byte(`{"error": "fecha invalida"}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "fecha invalida")
}

// Создание брони отправляет нагрузку с продублированными ключами.
func TestCreateReservationPayloadShape(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reservations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	payload := wire.NewReservationPayload("uid-1", "res-1", date, "10:00-11:00", []string{"uid-2"})
	require.NoError(t, client.CreateReservation(context.Background(), testSession(), payload))

	assert.Equal(t, got["userId"], got["reservedBy"], "userId and reservedBy must match on the wire")
	assert.Equal(t, got["resourceId"], got["resource"], "resourceId and resource must match on the wire")
	assert.Equal(t, "2026-09-12", got["date"])
	assert.Equal(t, "10:00-11:00", got["timeSlot"])
}

// Отмена идет как PUT со state=cancelada, не DELETE.
func TestCancelReservationSendsState(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/reservations/r1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.CancelReservation(context.Background(), testSession(), "r1"))
	assert.Equal(t, string(domain.StateCancelled), got["state"])
}

func TestAvailabilityRequestAndResponse(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reservations/availability", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"available_hours": ["08:00-09:00", "09:00-10:00"]}`))
	})

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	slots, err := client.Availability(context.Background(), testSession(), "res-1", date)
	require.NoError(t, err)
	assert.Equal(t, "res-1", got["resource_id"])
	assert.Equal(t, "2026-09-12", got["date"])
	assert.Equal(t, []string{"08:00-09:00", "09:00-10:00"}, slots)
}

// Обмен токена возвращает сессионную куку из Set-Cookie.
func TestExchangeTokenCapturesCookie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "firebase-id-token", body["idToken"])
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "backend-session-value"})
		w.WriteHeader(http.StatusOK)
	})

	cookie, err := client.ExchangeToken(context.Background(), "firebase-id-token")
	require.NoError(t, err)
	assert.Equal(t, "session=backend-session-value", cookie)
}

func TestExchangeTokenRejectedCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ExchangeToken(context.Background(), "bad-token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestMeResolvesRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		w.Write([]byte(`{"uid": "uid-1", "role": true}`))
	})

	uid, role, err := client.Me(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestMeRegularUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uid": "uid-2", "role": false}`))
	})

	_, role, err := client.Me(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}
