package rabbitmq

import (
	"github.com/streadway/amqp"

	librabbitmq "github.com/JerryyrreJ/subscription-management-sub000/internal/lib/rabbitmq"
)

// NotificationPublisher публикует сообщения в обменник notifications.
type NotificationPublisher struct {
	ch *amqp.Channel
}

// NewNotificationPublisher создает издателя поверх открытого канала.
func NewNotificationPublisher(ch *amqp.Channel) *NotificationPublisher {
	return &NotificationPublisher{ch: ch}
}

// Publish сериализует сообщение в JSON и публикует его с заданным ключом маршрутизации.
func (p *NotificationPublisher) Publish(routingKey string, message any) error {
	return librabbitmq.PublishMessage(p.ch, "notifications", routingKey, message)
}
