package wire

import (
	"time"

	"github.com/tidwall/gjson"
)

// Бэкенд отдает идентификаторы и даты в расширенном JSON MongoDB:
// {"$oid": "..."} и {"$date": "..."} (иногда {"$date": {"$numberLong": "..."}}).
// Одни и те же сущности в разных ручках приходят то обернутыми, то плоскими,
// поэтому распаковка всегда пробует обе формы.

// UnwrapOID извлекает идентификатор из поля, которое может быть либо
// строкой, либо оберткой {"$oid": "..."}. Если поля нет, возвращает пустую строку.
func UnwrapOID(field gjson.Result) string {
	if field.Type == gjson.String {
		return field.String()
	}
	if oid := field.Get("$oid"); oid.Exists() {
		return oid.String()
	}
	return ""
}

// UnwrapDate извлекает время из поля, которое может быть строкой RFC3339,
// оберткой {"$date": "..."} или {"$date": {"$numberLong": "<millis>"}}.
// При любой ошибке парсинга возвращается fallback, а не ошибка: сломанная
// дата в одной записи не должна ронять загрузку всей формы.
func UnwrapDate(field gjson.Result, fallback time.Time) time.Time {
	raw := field
	if d := field.Get("$date"); d.Exists() {
		raw = d
	}
	if n := raw.Get("$numberLong"); n.Exists() {
		return time.UnixMilli(n.Int()).UTC()
	}
	if raw.Type == gjson.String {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw.String()); err == nil {
				return t
			}
		}
	}
	if raw.Type == gjson.Number {
		return time.UnixMilli(raw.Int()).UTC()
	}
	return fallback
}
