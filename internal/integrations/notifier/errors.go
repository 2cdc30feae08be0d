package notifier

import "errors"

var (
	// ErrConnectionFailed возвращается, когда не удалось подключиться к брокеру
	ErrConnectionFailed = errors.New("notifier: failed to connect to broker")

	// ErrPublishFailed возвращается при ошибке публикации события
	ErrPublishFailed = errors.New("notifier: failed to publish event")
)
