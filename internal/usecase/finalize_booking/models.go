package finalize_booking

import "time"

// Visitor данные посетителя для брони
type Visitor struct {
	Name  string  // имя посетителя
	Email string  // email для отправки подтверждения
	Phone *string // телефон (опционально)
}

// Payment результат оплаты от платёжного шлюза
// Для бесплатных сеансов Confirmed=true и Amount=0
type Payment struct {
	Confirmed bool    // оплата подтверждена шлюзом
	Amount    float64 // сумма оплаты
	Currency  string  // валюта (ISO 4217)
}

// Request модель запроса на финализацию брони
type Request struct {
	HoldID    int64   // ID холда
	SessionID string  // идентификатор сессии покупателя
	Visitor   Visitor // данные посетителя
	Payment   Payment // результат оплаты

	// ConversionToken токен, выданный при переводе холда в конвертацию.
	// Если передан, должен совпадать с сохранённым
	ConversionToken string
}

// Response модель ответа с подтверждённой бронью
type Response struct {
	BookingID     int64     // ID созданной брони
	Reference     string    // человекочитаемый код брони
	TimeSlotID    int64     // ID слота
	Quantity      int       // количество билетов
	TotalAmount   float64   // сумма оплаты
	Currency      string    // валюта
	PaymentStatus string    // paid или free
	Status        string    // статус брони
	CreatedAt     time.Time // время создания
}
