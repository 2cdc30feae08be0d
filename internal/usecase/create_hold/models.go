package create_hold

import "time"

// Request модель запроса на создание холда
type Request struct {
	TimeSlotID int64  // ID слота
	SessionID  string // идентификатор сессии покупателя
	Quantity   int    // количество билетов
}

// Response модель ответа с созданным холдом
type Response struct {
	HoldID     int64     // ID созданного холда
	TimeSlotID int64     // ID слота
	Quantity   int       // количество билетов
	Status     string    // статус холда
	ExpiresAt  time.Time // момент истечения холда
	CreatedAt  time.Time // время создания
}
