package notify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/6529-Collections/salesbot/internal/config"
	"go.uber.org/zap"
)

type closer interface {
	Close() error
}

// BuildSink creates the sinks named in NOTIFY_SINKS. The returned func closes
// every sink holding a connection.
func BuildSink(cfg config.Config) (*MultiSink, func() error, error) {
	multi := NewMultiSink()
	var closers []closer
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	for _, name := range cfg.NotifySinks {
		name = strings.ToLower(strings.TrimSpace(name))
		var sink Sink
		var err error
		switch name {
		case "":
			continue
		case "log":
			sink = LogSink{}
		case "webhook":
			if cfg.NotifyWebhookUrl == "" {
				err = errors.New("NOTIFY_WEBHOOK_URL is not set")
			} else {
				sink = NewWebhookSink(cfg.NotifyWebhookUrl, &http.Client{Timeout: cfg.ExternalCallTimeout})
			}
		case "twitter":
			sink, err = NewTwitterSink(TwitterCredentials{
				ApiKey:            cfg.TwitterApiKey,
				ApiSecret:         cfg.TwitterApiSecret,
				AccessToken:       cfg.TwitterAccessToken,
				AccessTokenSecret: cfg.TwitterAccessTokenSecret,
			}, cfg.ExternalCallTimeout)
		case "kafka":
			var k *KafkaSink
			k, err = NewKafkaSink(KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
			if err == nil {
				closers = append(closers, k)
				sink = k
			}
		case "amqp":
			var a *AmqpSink
			a, err = NewAmqpSink(AmqpConfig{Url: cfg.AmqpUrl, Exchange: cfg.AmqpExchange, RoutingKey: cfg.AmqpRoutingKey})
			if err == nil {
				closers = append(closers, a)
				sink = a
			}
		default:
			err = errors.New("unknown sink")
		}
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("failed to create %q notification sink: %w", name, err)
		}
		multi.Add(name, sink)
		zap.L().Info("Notification sink enabled", zap.String("sink", name))
	}

	if multi.Len() == 0 {
		multi.Add("log", LogSink{})
	}
	return multi, closeAll, nil
}
