package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeFormat формат времени HH:MM
const TimeFormat = "15:04"

var (
	// ErrInvalidTimeString возвращается при некорректном формате строки времени
	ErrInvalidTimeString = errors.New("invalid time string format")
)

// TimeString время в формате "HH:MM" (например, "10:30")
// Используется для времени начала и конца слотов, хранится в БД как TIME
type TimeString string

// NewTimeString создает TimeString из time.Time (отбрасывая дату и секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(TimeFormat))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет, что строка соответствует формату HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(TimeFormat, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// toTime парсит TimeString в time.Time (дата условная)
func (t TimeString) toTime() (time.Time, error) {
	parsed, err := time.Parse(TimeFormat, string(t))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed, nil
}

// IsBefore возвращает true, если t строго раньше other
// Некорректные значения считаются "не раньше"
func (t TimeString) IsBefore(other TimeString) bool {
	t1, err1 := t.toTime()
	t2, err2 := other.toTime()
	if err1 != nil || err2 != nil {
		return false
	}
	return t1.Before(t2)
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	t1, err1 := t.toTime()
	t2, err2 := other.toTime()
	if err1 != nil || err2 != nil {
		return false
	}
	return t1.After(t2)
}

// AddMinutes возвращает новое время, сдвинутое на minutes минут вперед
// Переход через полночь не поддерживается: "23:50" + 20 вернет ошибку
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	parsed, err := t.toTime()
	if err != nil {
		return "", err
	}
	shifted := parsed.Add(time.Duration(minutes) * time.Minute)
	if shifted.Day() != parsed.Day() {
		return "", fmt.Errorf("%w: %q + %d minutes crosses midnight", ErrInvalidTimeString, string(t), minutes)
	}
	return NewTimeString(shifted), nil
}

// OnDate совмещает TimeString с датой, возвращая полный time.Time
func (t TimeString) OnDate(date time.Time) (time.Time, error) {
	parsed, err := t.toTime()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
// Postgres возвращает TIME как строку "15:04:05" или time.Time
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	// Обрезаем секунды, если БД вернула "15:04:05"
	if len(s) > 5 {
		s = s[:5]
	}
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return err
	}
	*t = ts
	return nil
}
