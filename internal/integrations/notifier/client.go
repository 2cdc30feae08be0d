package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher клиент публикации событий брони в RabbitMQ
// Держит одно соединение на весь срок жизни сервиса; при обрыве
// переподключается на следующей публикации
type Publisher struct {
	url    string
	queue  string
	logger Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher создает новый клиент публикации событий
// Соединение устанавливается лениво при первой публикации
func NewPublisher(url, queue string, logger Logger) *Publisher {
	return &Publisher{
		url:    url,
		queue:  queue,
		logger: logger,
	}
}

// PublishBookingConfirmed публикует событие подтверждения брони
// Сообщение помечается persistent, очередь durable. Ошибка публикации
// возвращается вызывающему, который волен её проигнорировать -
// бронь уже закоммичена и от доставки события не зависит
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event *BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublishFailed, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = имя очереди
		false,   // mandatory
		false,   // immediate
		pub,
	)
	if err != nil {
		// Канал мог протухнуть - сбрасываем, следующая публикация переподключится
		p.reset()
		return fmt.Errorf("%w: publish to %s: %v", ErrPublishFailed, p.queue, err)
	}

	p.logger.Info("Notifier: published booking.confirmed, booking=%d reference=%s",
		event.BookingID, event.Reference)
	return nil
}

// Close закрывает соединение с брокером
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reset()
	return nil
}

// channel возвращает открытый канал, при необходимости подключаясь к брокеру
// Вызывается только под mu
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}

	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnectionFailed, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnectionFailed, err)
	}

	// Объявление идемпотентно, durable - события переживают рестарт брокера
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare queue %s: %v", ErrConnectionFailed, p.queue, err)
	}

	p.conn = conn
	p.ch = ch
	return ch, nil
}

// reset закрывает текущее соединение, если оно есть
// Вызывается только под mu
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
