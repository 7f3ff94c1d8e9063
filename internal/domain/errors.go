package domain

import "errors"

// Типизированные ошибки клиента бэкенда. Хендлеры сопоставляют их
// с flash-сообщениями и редиректами, никуда дальше они не распространяются.
var (
	// ErrUnauthorized соответствует 401: сессии нет или она протухла, нужен редирект на логин.
	ErrUnauthorized = errors.New("no autenticado")
	// ErrForbidden соответствует 403: сессия есть, но прав не хватает.
	ErrForbidden = errors.New("operación no permitida")
	// ErrNotFound соответствует 404: при чтении списков трактуется как пустая
	// коллекция, при мутациях как ошибка, видимая пользователю.
	ErrNotFound = errors.New("no encontrado")
	// ErrValidation значит 400 от бэкенда либо локальную ошибку схемы формы.
	ErrValidation = errors.New("error de validación")
	// ErrInvalidCredentials значит неверную пару email/пароль при входе.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
)
