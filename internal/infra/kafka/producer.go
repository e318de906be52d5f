package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/infra/config"
)

// Producer wraps a sarama async producer. Delivery errors are drained in the
// background and surfaced on Errors so publishing never blocks on a broker
// hiccup.
type Producer struct {
	inner   sarama.AsyncProducer
	logger  *zap.Logger
	prefix  string
	errs    chan error
	closing chan struct{}
}

// NewProducer connects an async producer. Sends are acked by the partition
// leader only and compressed with snappy.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_5_0_0
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Flush.Frequency = 100 * time.Millisecond
	sc.Producer.Flush.Messages = 100
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true
	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond

	inner, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Producer{
		inner:   inner,
		logger:  logger,
		prefix:  cfg.TopicPrefix,
		errs:    make(chan error, 256),
		closing: make(chan struct{}),
	}
	go p.drainErrors()

	logger.Info("kafka producer connected",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return p, nil
}

func (p *Producer) drainErrors() {
	for {
		select {
		case perr := <-p.inner.Errors():
			if perr == nil {
				continue
			}
			p.logger.Error("kafka delivery failed",
				zap.Error(perr.Err),
				zap.String("topic", perr.Msg.Topic),
				zap.Int32("partition", perr.Msg.Partition),
			)
			select {
			case p.errs <- perr.Err:
			default:
				// Nobody is reading; dropping beats blocking the drain loop.
			}
		case <-p.closing:
			return
		}
	}
}

// Producer exposes the underlying sarama producer for message submission.
func (p *Producer) Producer() sarama.AsyncProducer {
	return p.inner
}

// Errors reports delivery failures to interested callers.
func (p *Producer) Errors() <-chan error {
	return p.errs
}

// TopicName prepends the configured prefix unless the event type already
// carries it.
func (p *Producer) TopicName(eventType string) string {
	if p.prefix == "" || strings.HasPrefix(eventType, p.prefix+".") {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Close flushes buffered messages and stops the error drain.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")
	close(p.closing)

	if err := p.inner.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	close(p.errs)
	return nil
}
