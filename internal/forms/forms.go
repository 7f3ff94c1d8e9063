package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"gym-admin/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginForm описывает форму входа.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm описывает форму регистрации нового пользователя.
type RegisterForm struct {
	Name            string `form:"name" validate:"required,min=3"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// ResourceForm описывает форму создания и редактирования ресурса.
type ResourceForm struct {
	Name        string `form:"name" validate:"required,min=3"`
	Description string `form:"description"`
	Capacity    int    `form:"capacity" validate:"required,min=1"`
	OpeningTime string `form:"openingTime" validate:"required"`
	ClosingTime string `form:"closingTime" validate:"required"`
	Active      bool   `form:"active"`
}

// ReservationDraft хранит черновик брони. Участники не обязательны, остальные
// поля нужны до отправки на бэкенд.
type ReservationDraft struct {
	UserID       string   `form:"userId" validate:"required"`
	ResourceID   string   `form:"resourceId" validate:"required"`
	Date         string   `form:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot     string   `form:"timeSlot" validate:"required"`
	Participants []string `form:"participants"`
}

// Сообщения пользователю, по полю и правилу.
var fieldMessages = map[string]string{
	"Email.required":           "El correo es obligatorio",
	"Email.email":              "El correo no es valido",
	"Password.required":        "La contrasena es obligatoria",
	"Password.min":             "La contrasena debe tener al menos 6 caracteres",
	"ConfirmPassword.required": "Confirma la contrasena",
	"ConfirmPassword.eqfield":  "Las contrasenas no coinciden",
	"Name.required":            "El nombre es obligatorio",
	"Name.min":                 "El nombre debe tener al menos 3 caracteres",
	"Capacity.required":        "La capacidad es obligatoria",
	"Capacity.min":             "La capacidad debe ser al menos 1",
	"OpeningTime.required":     "La hora de apertura es obligatoria",
	"ClosingTime.required":     "La hora de cierre es obligatoria",
	"UserID.required":          "Selecciona el usuario de la reserva",
	"ResourceID.required":      "Selecciona un recurso",
	"Date.required":            "Selecciona una fecha",
	"Date.datetime":            "La fecha no es valida",
	"TimeSlot.required":        "Selecciona una franja horaria",
}

// Validate прогоняет форму через схему и возвращает сообщения по полям.
// При наличии хотя бы одной ошибки вторым значением идет domain.ErrValidation.
func Validate(form interface{}) (map[string]string, error) {
	err := validate.Struct(form)
	if err == nil {
		return nil, nil
	}

	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return nil, err
	}

	messages := make(map[string]string, len(verr))
	for _, fe := range verr {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := fieldMessages[key]
		if !ok {
			msg = "El campo " + fe.Field() + " no es valido"
		}
		messages[fe.Field()] = msg
	}
	return messages, domain.ErrValidation
}
