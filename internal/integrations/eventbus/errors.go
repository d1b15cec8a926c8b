package eventbus

import "errors"

var (
	// ErrConnect ошибка подключения к брокеру
	ErrConnect = errors.New("eventbus: failed to connect to broker")

	// ErrDeclareQueue ошибка объявления очереди
	ErrDeclareQueue = errors.New("eventbus: failed to declare queue")

	// ErrMarshal ошибка сериализации события
	ErrMarshal = errors.New("eventbus: failed to marshal event")

	// ErrPublish ошибка публикации события
	ErrPublish = errors.New("eventbus: failed to publish event")

	// ErrClosed публикация в закрытый издатель
	ErrClosed = errors.New("eventbus: publisher is closed")
)
