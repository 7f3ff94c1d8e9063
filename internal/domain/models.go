package domain

import "time"

// Роли, которые возвращает бэкенд в /auth/me. На проводе роль приходит
// булевым флагом admin, здесь она разворачивается в строковую роль для
// проверок доступа.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session передается явным аргументом в каждый аутентифицированный вызов
// бэкенда. BackendCookie хранит сессионную куку, выданную бэкендом
// при обмене токена (POST /auth/), в виде "name=value".
type Session struct {
	UID           string
	Role          Role
	BackendCookie string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// User описывает пользователя системы. Создается при регистрации, мутируется только
// переключателями admin/banned, никогда не удаляется из консоли.
type User struct {
	ID     string
	Name   string
	Email  string
	Admin  bool
	Banned bool
}

// Resource описывает бронируемый объект (бассейн, корт, зал).
type Resource struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	OpeningTime string // "08:00"
	ClosingTime string // "20:00"
	Active      bool
}

// Schedule возвращает отображаемый интервал работы ресурса.
func (r Resource) Schedule() string {
	return r.OpeningTime + " - " + r.ClosingTime
}

// Состояния жизненного цикла резервации. Написание "completeda" не опечатка
// здесь, а точный токен, который использует бэкенд.
type ReservationState string

const (
	StateActive    ReservationState = "activa"
	StateCompleted ReservationState = "completeda"
	StateCancelled ReservationState = "cancelada"
)

// Reservation описывает бронь ресурса пользователем на дату и временной слот.
// TimeSlot хранит непрозрачный токен вида "10:00-11:00", выданный бэкендом
// в ответе availability.
type Reservation struct {
	ID               string
	ReservedBy       string
	ReservedByName   string
	ResourceID       string
	ResourceName     string
	Date             time.Time
	TimeSlot         string
	ParticipantIDs   []string
	ParticipantNames []string
	State            ReservationState
}

// CanModify сообщает, доступны ли действия "Editar"/"Cancelar" в консоли.
// Редактировать и отменять можно только активные брони.
func (r Reservation) CanModify() bool {
	return r.State == StateActive
}
