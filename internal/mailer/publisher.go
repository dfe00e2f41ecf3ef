package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jiangong-dev/task-center/backend/internal/config"
	"github.com/jiangong-dev/task-center/backend/internal/domain"
)

const QueueName = "email_queue"

// Publisher 把邮件信息投递到 RabbitMQ，由 mail worker 消费后实际发送
type Publisher struct {
	cfg *config.Config
	ch  *amqp.Channel
}

func NewPublisher(cfg *config.Config, ch *amqp.Channel) *Publisher {
	return &Publisher{
		cfg: cfg,
		ch:  ch,
	}
}

func (p *Publisher) Publish(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *Publisher) NotifyRecurringTask(to string, data domain.RecurringTaskMailData) error {
	return p.Publish(domain.MailMessage{
		Type: "recurring_task",
		To:   to,
		Data: data,
	})
}
