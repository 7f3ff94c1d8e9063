package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-admin/internal/domain"
)

func TestDecodeUsers(t *testing.T) {
	body := []byte(`[
		{"_id": "uid-1", "nombre": "Ana", "email": "ana@gym.es", "admin": true, "banned": false},
		{"_id": {"$oid": "507f1f77bcf86cd799439011"}, "nombre": "Luis", "email": "luis@gym.es", "admin": false, "banned": true}
	]`)

	users, err := DecodeUsers(body)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Идентификатор распаковывается и из плоской строки, и из $oid
	assert.Equal(t, "uid-1", users[0].ID)
	assert.Equal(t, "507f1f77bcf86cd799439011", users[1].ID)
	assert.Equal(t, "Ana", users[0].Name)
	assert.True(t, users[0].Admin)
	assert.True(t, users[1].Banned)
}

func TestDecodeUsersRejectsNonArray(t *testing.T) {
	_, err := DecodeUsers([]byte(`{"error": "nope"}`))
	assert.Error(t, err, "object body must not decode as a user list")
}

func TestDecodeResourceCapacityAsStringOrNumber(t *testing.T) {
	asNumber, err := DecodeResource([]byte(`{"_id": "r1", "name": "Piscina", "capacity": 10}`))
	require.NoError(t, err)
	assert.Equal(t, 10, asNumber.Capacity)

	asString, err := DecodeResource([]byte(`{"_id": "r2", "name": "Pista", "capacity": "25"}`))
	require.NoError(t, err)
	assert.Equal(t, 25, asString.Capacity)
}

// Round-trip: нагрузка создания → форма чтения → те же значения.
func TestResourcePayloadRoundTrip(t *testing.T) {
	payload := ResourcePayload{
		Name:        "Pool",
		Description: "Piscina cubierta",
		Capacity:    10,
		OpeningTime: "08:00",
		ClosingTime: "20:00",
		Active:      true,
	}
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	// Бэкенд добавляет _id и возвращает остальное как есть
	var wireForm map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &wireForm))
	wireForm["_id"] = map[string]string{"$oid": "507f1f77bcf86cd799439011"}
	withID, err := json.Marshal(wireForm)
	require.NoError(t, err)

	resource, err := DecodeResource(withID)
	require.NoError(t, err)
	assert.Equal(t, payload.Name, resource.Name)
	assert.Equal(t, payload.Capacity, resource.Capacity)
	assert.Equal(t, payload.OpeningTime, resource.OpeningTime)
	assert.Equal(t, payload.ClosingTime, resource.ClosingTime)
	assert.Equal(t, payload.Active, resource.Active)
}

func TestDecodeReservationListForm(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	body := []byte(`[{
		"_id": {"$oid": "64e0f1a2b3c4d5e6f7a8b9c0"},
		"reservedBy": "uid-1",
		"reservedByName": "Ana",
		"resource": {"$oid": "507f1f77bcf86cd799439011"},
		"resourceName": "Piscina",
		"date": {"$date": "2026-09-12T00:00:00Z"},
		"startTime": {"$date": "2026-09-12T10:00:00Z"},
		"endTime": {"$date": "2026-09-12T11:00:00Z"},
		"participantesId": ["uid-2", "uid-3"],
		"nombres_participantes": ["Luis", "Marta"],
		"state": "activa"
	}]`)

	reservations, err := DecodeReservations(body, now)
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	r := reservations[0]
	assert.Equal(t, "64e0f1a2b3c4d5e6f7a8b9c0", r.ID)
	assert.Equal(t, "uid-1", r.ReservedBy)
	assert.Equal(t, "507f1f77bcf86cd799439011", r.ResourceID)
	// Слот склеивается из startTime/endTime
	assert.Equal(t, "10:00-11:00", r.TimeSlot)
	assert.Equal(t, []string{"uid-2", "uid-3"}, r.ParticipantIDs)
	assert.Equal(t, domain.StateActive, r.State)
	assert.Equal(t, 12, r.Date.Day())
}

// Форма ручки редактирования: плоские поля и готовый timeSlot.
func TestDecodeReservationEditForm(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	body := []byte(`{
		"_id": "64e0f1a2b3c4d5e6f7a8b9c0",
		"reservedBy": "uid-1",
		"resourceId": "res-1",
		"date": "2026-09-12",
		"timeSlot": "18:00-19:00",
		"participantesId": [],
		"state": "activa"
	}`)

	r, err := DecodeReservation(body, now)
	require.NoError(t, err)
	assert.Equal(t, "res-1", r.ResourceID, "resourceId fallback must be used when resource is absent")
	assert.Equal(t, "18:00-19:00", r.TimeSlot, "explicit timeSlot must win over startTime/endTime")
	assert.Equal(t, 2026, r.Date.Year())
	assert.Empty(t, r.ParticipantIDs)
}

// Непарсящаяся дата не роняет адаптер, вместо нее подставляется "сейчас".
func TestDecodeReservationDateFallback(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	body := []byte(`{
		"_id": "r1",
		"reservedBy": "uid-1",
		"resourceId": "res-1",
		"date": {"$date": "garbage"},
		"timeSlot": "10:00-11:00",
		"state": "activa"
	}`)

	r, err := DecodeReservation(body, now)
	require.NoError(t, err)
	assert.Equal(t, now, r.Date, "unparseable date must fall back to now")
}

func TestDecodeAvailableHoursKeepsOrder(t *testing.T) {
	slots, err := DecodeAvailableHours([]byte(`{"available_hours": ["08:00-09:00", "10:00-11:00", "09:00-10:00"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00-09:00", "10:00-11:00", "09:00-10:00"}, slots)

	_, err = DecodeAvailableHours([]byte(`{}`))
	assert.Error(t, err, "missing available_hours must be an error")
}

// Продублированные ключи нагрузки всегда совпадают.
func TestNewReservationPayloadDuplicatesKeys(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	payload := NewReservationPayload("uid-1", "res-1", date, "10:00-11:00", nil)

	assert.Equal(t, payload.UserID, payload.ReservedBy, "userId and reservedBy must be equal")
	assert.Equal(t, payload.ResourceID, payload.Resource, "resourceId and resource must be equal")
	assert.Equal(t, "2026-09-12", payload.Date)
	require.NotNil(t, payload.Participants, "participants must serialize as [] and not null")
	assert.Empty(t, payload.Participants)

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"participantesId":[]`)
}

func TestUserUpdatePayloadOmitsUntouchedFields(t *testing.T) {
	value := true
	encoded, err := json.Marshal(UserUpdatePayload{Admin: &value})
	require.NoError(t, err)
	assert.JSONEq(t, `{"admin": true}`, string(encoded), "banned must be omitted when not toggled")
}
