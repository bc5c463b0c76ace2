package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type AmqpConfig struct {
	Url        string
	Exchange   string
	RoutingKey string
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AmqpSink publishes notifications to a durable topic exchange.
type AmqpSink struct {
	conn       *amqp091.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	declared   bool
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewAmqpSink(cfg AmqpConfig) (*AmqpSink, error) {
	cleanURL, err := sanitizeAMQPURL(cfg.Url)
	if err != nil {
		return nil, err
	}
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AmqpSink{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}, nil
}

func (s *AmqpSink) Publish(ctx context.Context, message string) error {
	if !s.declared {
		if err := s.channel.ExchangeDeclare(
			s.exchange, // name
			"topic",    // type
			true,       // durable
			false,      // autoDelete
			false,      // internal
			false,      // noWait
			nil,        // args
		); err != nil {
			return err
		}
		s.declared = true
	}

	body, err := json.Marshal(notificationMessage{Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	err = s.channel.PublishWithContext(ctx,
		s.exchange,   // exchange
		s.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		zap.L().Warn("AMQP publish failed; reopening channel", zap.String("exchange", s.exchange), zap.Error(err))
		s.reopenChannel()
	}
	return err
}

// A failed publish closes the channel, so the next publish needs a new one.
func (s *AmqpSink) reopenChannel() {
	s.declared = false
	if s.conn == nil {
		return
	}
	ch, err := s.conn.Channel()
	if err != nil {
		zap.L().Warn("Could not reopen AMQP channel", zap.Error(err))
		return
	}
	_ = s.channel.Close()
	s.channel = ch
}

func (s *AmqpSink) Close() error {
	var errs []error
	if s.channel != nil {
		errs = append(errs, s.channel.Close())
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}
