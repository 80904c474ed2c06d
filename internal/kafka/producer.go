package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer async: Publish cuma enqueue ke inbox, satu goroutine yang nulis
// ke broker. Fire-and-forget untuk throughput; error ditulis ke log.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closed    chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, buf),
		closed: make(chan struct{}),
		log:    log.With(zap.String("topic", topic)),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		// ctx batal -> tutup inbox; loop di bawah drain sisa pesan dulu
		<-ctx.Done()
		p.Close()
	}()
	go func() {
		defer close(p.closed)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.Error("kafka write", zap.Error(err))
			}
		}
		_ = p.w.Close()
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close idempotent; goroutine writer flush sisa pesan lalu exit rapi.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// Tunggu sampai goroutine writer selesai.
func (p *Producer) WaitClosed() { <-p.closed }
