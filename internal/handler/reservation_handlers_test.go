package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gym-admin/internal/client"
	"gym-admin/internal/config"
	"gym-admin/internal/domain"
	"gym-admin/internal/guard"
	"gym-admin/internal/wire"
)

// cancelBackend отдает одну бронь и считает вызовы отмены.
type cancelBackend struct {
	reservation  domain.Reservation
	getErr       error
	cancelCalls  int
	cancelledIDs []string
}

var _ client.BackendClient = (*cancelBackend)(nil)

func (b *cancelBackend) ListUsers(context.Context, *domain.Session) ([]domain.User, error) {
	return nil, nil
}

func (b *cancelBackend) UpdateUser(context.Context, *domain.Session, string, wire.UserUpdatePayload) error {
	return nil
}

func (b *cancelBackend) RegisterUser(context.Context, wire.RegistrationPayload) error { return nil }

func (b *cancelBackend) ListResources(context.Context, *domain.Session) ([]domain.Resource, error) {
	return nil, nil
}

func (b *cancelBackend) GetResource(context.Context, *domain.Session, string) (domain.Resource, error) {
	return domain.Resource{}, nil
}

func (b *cancelBackend) CreateResource(context.Context, *domain.Session, wire.ResourcePayload) error {
	return nil
}

func (b *cancelBackend) UpdateResource(context.Context, *domain.Session, string, wire.ResourcePayload) error {
	return nil
}

func (b *cancelBackend) DeleteResource(context.Context, *domain.Session, string) error { return nil }

func (b *cancelBackend) ListReservations(context.Context, *domain.Session) ([]domain.Reservation, error) {
	return nil, nil
}

func (b *cancelBackend) GetReservation(context.Context, *domain.Session, string) (domain.Reservation, error) {
	return b.reservation, b.getErr
}

func (b *cancelBackend) CreateReservation(context.Context, *domain.Session, wire.ReservationPayload) error {
	return nil
}

func (b *cancelBackend) UpdateReservation(context.Context, *domain.Session, string, wire.ReservationPayload) error {
	return nil
}

func (b *cancelBackend) CancelReservation(_ context.Context, _ *domain.Session, reservationID string) error {
	b.cancelCalls++
	b.cancelledIDs = append(b.cancelledIDs, reservationID)
	return nil
}

func (b *cancelBackend) Availability(context.Context, *domain.Session, string, time.Time) ([]string, error) {
	return nil, nil
}

func (b *cancelBackend) ExchangeToken(context.Context, string) (string, error) { return "", nil }

func (b *cancelBackend) Me(context.Context, *domain.Session) (string, domain.Role, error) {
	return "admin", domain.RoleAdmin, nil
}

const cancelTestFlashSecret = "flash-secret"

// cancelRouter собирает роутер с хендлером отмены; сессия подкладывается
// в контекст напрямую, без прохода через guard.
func cancelRouter(t *testing.T, backend *cancelBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	cfg := &config.Config{FlashSecret: cancelTestFlashSecret, JWTSecret: "jwt-secret", SessionTTL: time.Hour}
	sessionGuard, err := guard.New(cfg.JWTSecret, cfg.SessionTTL, backend, logger)
	require.NoError(t, err)
	h := NewAdminHandler(cfg, logger, backend, nil, nil, sessionGuard)

	router := gin.New()
	router.POST("/admin/reservations/:reservation_id/cancel", func(c *gin.Context) {
		c.Set(guard.SessionContextKey, &domain.Session{UID: "admin", Role: domain.RoleAdmin, BackendCookie: "session=x"})
		c.Next()
	}, h.handleCancelReservation)
	return router
}

func postCancel(router *gin.Engine, reservationID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/reservations/"+reservationID+"/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// readFlash расшифровывает flash-куку из ответа.
func readFlash(t *testing.T, w *httptest.ResponseRecorder) *FlashMessage {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name != flashCookieName || cookie.MaxAge < 0 {
			continue
		}
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.AddCookie(cookie)
		flash, err := getFlashMessage(c, []byte(cancelTestFlashSecret))
		require.NoError(t, err)
		return flash
	}
	return nil
}

func TestCancelActiveReservation(t *testing.T) {
	backend := &cancelBackend{
		reservation: domain.Reservation{ID: "r1", State: domain.StateActive},
	}
	router := cancelRouter(t, backend)

	w := postCancel(router, "r1")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/reservations", w.Header().Get("Location"))
	assert.Equal(t, 1, backend.cancelCalls)
	assert.Equal(t, []string{"r1"}, backend.cancelledIDs)

	flash := readFlash(t, w)
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Type)
}

// Отменять можно только активную бронь: для завершенной и уже отмененной
// запрос на бэкенд не уходит вовсе.
func TestCancelRejectsNonActiveReservation(t *testing.T) {
	for _, state := range []domain.ReservationState{domain.StateCompleted, domain.StateCancelled} {
		t.Run(string(state), func(t *testing.T) {
			backend := &cancelBackend{
				reservation: domain.Reservation{ID: "r1", State: state},
			}
			router := cancelRouter(t, backend)

			w := postCancel(router, "r1")
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/admin/reservations", w.Header().Get("Location"))
			assert.Zero(t, backend.cancelCalls, "cancel must not reach the backend for a non-active reservation")

			flash := readFlash(t, w)
			require.NotNil(t, flash)
			assert.Equal(t, "error", flash.Type)
			assert.Equal(t, "Solo se pueden cancelar reservas activas", flash.Message)
		})
	}
}

func TestCancelLoadFailureSkipsBackendCall(t *testing.T) {
	backend := &cancelBackend{getErr: domain.ErrNotFound}
	router := cancelRouter(t, backend)

	w := postCancel(router, "missing")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, backend.cancelCalls)

	flash := readFlash(t, w)
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Type)
}

// Вкладки списка: бронь видна только на вкладке своего состояния, после
// отмены она уходит из "Activas" без полной перезагрузки данных.
func TestFilterReservationsByState(t *testing.T) {
	reservations := []domain.Reservation{
		{ID: "r1", ReservedByName: "Ana", ResourceName: "Piscina", State: domain.StateActive},
		{ID: "r2", ReservedByName: "Luis", ResourceName: "Pista", State: domain.StateCompleted},
		{ID: "r3", ReservedByName: "Marta", ResourceName: "Sala", State: domain.StateCancelled},
		{ID: "r4", ReservedByName: "Ana", ResourceName: "Pista", State: domain.StateActive},
	}

	cases := []struct {
		name  string
		state domain.ReservationState
		want  []string
	}{
		{"activas", domain.StateActive, []string{"r1", "r4"}},
		{"completas", domain.StateCompleted, []string{"r2"}},
		{"canceladas", domain.StateCancelled, []string{"r3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := filterReservations(reservations, tc.state, "")
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}

	// Отмена r1 убирает ее из вкладки активных
	reservations[0].State = domain.StateCancelled
	active := filterReservations(reservations, domain.StateActive, "")
	require.Len(t, active, 1)
	assert.Equal(t, "r4", active[0].ID)
	cancelled := filterReservations(reservations, domain.StateCancelled, "")
	assert.Len(t, cancelled, 2)
}

func TestFilterReservationsBySearch(t *testing.T) {
	reservations := []domain.Reservation{
		{ID: "r1", ReservedByName: "Ana Torres", ResourceName: "Piscina", State: domain.StateActive},
		{ID: "r2", ReservedByName: "Luis", ResourceName: "Pista cubierta", State: domain.StateActive},
	}

	byUser := filterReservations(reservations, domain.StateActive, "ana")
	require.Len(t, byUser, 1)
	assert.Equal(t, "r1", byUser[0].ID)

	byResource := filterReservations(reservations, domain.StateActive, "cubierta")
	require.Len(t, byResource, 1)
	assert.Equal(t, "r2", byResource[0].ID)

	assert.Empty(t, filterReservations(reservations, domain.StateActive, "gimnasio"))
}
