package wire

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"gym-admin/internal/domain"
)

// Адаптеры провода → домен. Списки явные и исчерпывающие: бэкенд использует
// разные формы для одной и той же сущности в разных ручках, и каждая форма
// маппится своей функцией, а не угадыванием структуры.

// DecodeUsers разбирает ответ GET /users. Идентификатор пользователя здесь
// приходит плоской строкой (uid Firebase), без обертки $oid.
func DecodeUsers(body []byte) ([]domain.User, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("user list: expected JSON array, got %s", parsed.Type)
	}
	users := make([]domain.User, 0, len(parsed.Array()))
	for _, item := range parsed.Array() {
		users = append(users, domain.User{
			ID:     UnwrapOID(item.Get("_id")),
			Name:   item.Get("nombre").String(),
			Email:  item.Get("email").String(),
			Admin:  item.Get("admin").Bool(),
			Banned: item.Get("banned").Bool(),
		})
	}
	return users, nil
}

// DecodeResources разбирает ответ GET /resources. capacity может прийти
// и числом, и строкой, gjson приводит оба варианта.
func DecodeResources(body []byte) ([]domain.Resource, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("resource list: expected JSON array, got %s", parsed.Type)
	}
	resources := make([]domain.Resource, 0, len(parsed.Array()))
	for _, item := range parsed.Array() {
		resources = append(resources, decodeResource(item))
	}
	return resources, nil
}

// DecodeResource разбирает одиночный ресурс (GET /resources/{id}).
func DecodeResource(body []byte) (domain.Resource, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return domain.Resource{}, fmt.Errorf("resource: expected JSON object, got %s", parsed.Type)
	}
	return decodeResource(parsed), nil
}

func decodeResource(item gjson.Result) domain.Resource {
	return domain.Resource{
		ID:          UnwrapOID(item.Get("_id")),
		Name:        item.Get("name").String(),
		Description: item.Get("description").String(),
		Capacity:    int(item.Get("capacity").Int()),
		OpeningTime: item.Get("openingTime").String(),
		ClosingTime: item.Get("closingTime").String(),
		Active:      item.Get("active").Bool(),
	}
}

// DecodeReservations разбирает ответ GET /reservations (списочная форма:
// resource и даты обернуты, reservedBy лежит плоской строкой). Временной слот
// склеивается из startTime/endTime в токен "10:00-11:00".
func DecodeReservations(body []byte, now time.Time) ([]domain.Reservation, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("reservation list: expected JSON array, got %s", parsed.Type)
	}
	reservations := make([]domain.Reservation, 0, len(parsed.Array()))
	for _, item := range parsed.Array() {
		reservations = append(reservations, decodeReservation(item, now))
	}
	return reservations, nil
}

// DecodeReservation разбирает одиночную бронь (GET /reservations/{id}).
// Форма ручки редактирования отличается от списочной: часть полей может
// прийти уже плоской, поэтому распаковка пробует обе.
func DecodeReservation(body []byte, now time.Time) (domain.Reservation, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return domain.Reservation{}, fmt.Errorf("reservation: expected JSON object, got %s", parsed.Type)
	}
	return decodeReservation(parsed, now), nil
}

func decodeReservation(item gjson.Result, now time.Time) domain.Reservation {
	start := UnwrapDate(item.Get("startTime"), now)
	end := UnwrapDate(item.Get("endTime"), now)
	slot := item.Get("timeSlot").String()
	if slot == "" {
		slot = FormatSlot(start, end)
	}

	resourceID := UnwrapOID(item.Get("resource"))
	if resourceID == "" {
		resourceID = UnwrapOID(item.Get("resourceId"))
	}

	return domain.Reservation{
		ID:               UnwrapOID(item.Get("_id")),
		ReservedBy:       UnwrapOID(item.Get("reservedBy")),
		ReservedByName:   item.Get("reservedByName").String(),
		ResourceID:       resourceID,
		ResourceName:     item.Get("resourceName").String(),
		Date:             UnwrapDate(item.Get("date"), now),
		TimeSlot:         slot,
		ParticipantIDs:   stringSlice(item.Get("participantesId")),
		ParticipantNames: stringSlice(item.Get("nombres_participantes")),
		State:            domain.ReservationState(item.Get("state").String()),
	}
}

// FormatSlot собирает токен слота из пары времен.
func FormatSlot(start, end time.Time) string {
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// DecodeAvailableHours разбирает ответ POST /reservations/availability:
// {"available_hours": ["10:00-11:00", ...]} с сохранением порядка.
func DecodeAvailableHours(body []byte) ([]string, error) {
	parsed := gjson.GetBytes(body, "available_hours")
	if !parsed.Exists() {
		return nil, fmt.Errorf("availability: missing available_hours field")
	}
	return stringSlice(parsed), nil
}

func stringSlice(field gjson.Result) []string {
	items := field.Array()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.String())
	}
	return out
}

// --- Полезные нагрузки запросов ---

// ResourcePayload описывает тело POST/PUT для ресурса. Ключи совпадают с формой
// чтения (openingTime/closingTime), чтобы round-trip через адаптер
// возвращал те же значения.
type ResourcePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	OpeningTime string `json:"openingTime"`
	ClosingTime string `json:"closingTime"`
	Active      bool   `json:"active"`
}

// ReservationPayload описывает тело POST/PUT для брони. Идентифицирующие поля
// продублированы под двумя именами: разные модули бэкенда читают разные
// ключи, и пары resourceId/resource и userId/reservedBy обязаны совпадать.
type ReservationPayload struct {
	UserID       string   `json:"userId"`
	ReservedBy   string   `json:"reservedBy"`
	ResourceID   string   `json:"resourceId"`
	Resource     string   `json:"resource"`
	Date         string   `json:"date"` // "2006-01-02"
	TimeSlot     string   `json:"timeSlot"`
	Participants []string `json:"participantesId"`
}

// NewReservationPayload строит нагрузку с гарантией совпадения
// продублированных ключей.
func NewReservationPayload(userID, resourceID string, date time.Time, timeSlot string, participants []string) ReservationPayload {
	if participants == nil {
		participants = []string{}
	}
	return ReservationPayload{
		UserID:       userID,
		ReservedBy:   userID,
		ResourceID:   resourceID,
		Resource:     resourceID,
		Date:         date.Format("2006-01-02"),
		TimeSlot:     timeSlot,
		Participants: participants,
	}
}

// UserUpdatePayload описывает тело PUT /users/{id}. Указатели, чтобы в запрос попало
// только переключаемое поле.
type UserUpdatePayload struct {
	Admin  *bool `json:"admin,omitempty"`
	Banned *bool `json:"banned,omitempty"`
}

// RegistrationPayload описывает тело POST /users при регистрации. В id идет
// uid из провайдера идентичности.
type RegistrationPayload struct {
	ID     string `json:"id"`
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
	Banned bool   `json:"banned"`
}
