package domain

import "time"

// Default reservation lifecycle values
const (
	DefaultHoldTTL        = 15 * time.Minute
	DefaultSweepInterval  = 60 * time.Second
	DefaultSweepGrace     = 5 * time.Minute
	DefaultSweepBatchSize = 100
)

// Business validation constants
const (
	MinHoldQuantity             = 1
	MaxHoldQuantity             = 10
	MinSlotDuration             = 10  // минут
	MaxSlotDuration             = 480 // 8 часов
	MaxGenerateRangeDays        = 92  // максимум 3 месяца за одну генерацию
	MaxVisitorNameLength        = 200
	MaxCancellationReasonLength = 500

	// BookingReferencePrefix префикс человекочитаемого кода брони
	BookingReferencePrefix = "MTB"
)

// DateFormat формат дат в API и конфигурации (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// ActiveHoldStatuses статусы холдов, занимающих ёмкость слота
// Используется при подсчёте доступной ёмкости
var ActiveHoldStatuses = []HoldStatus{
	HoldStatusActive,
	HoldStatusConverting,
}

// ActiveBookingStatuses статусы броней, занимающих подтверждённую ёмкость
var ActiveBookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
