// Package nats publishes portal events over NATS subjects. The worker
// process queue-subscribes to the uploaded subject for text extraction.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/medcampus/portal/internal/core/domain"
	"github.com/medcampus/portal/internal/infrastructure/resilience"
)

const (
	SubjectDocumentUploaded  = "portal.documents.uploaded"
	SubjectDocumentReviewed  = "portal.documents.reviewed"
	SubjectMessageProcessed  = "portal.chatbot.processed"
	SubjectScenarioCompleted = "portal.simulations.completed"
)

type Bus struct {
	conn     *nats.Conn
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url string) (*Bus, error) {
	return NewWithOptions(url, Options{})
}

func NewWithOptions(url string, options Options) (*Bus, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("medcampus-portal"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{conn: conn, executor: options.ResilienceExecutor}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *Bus) PublishDocumentUploaded(ctx context.Context, event domain.DocumentUploadedEvent) error {
	return b.publish(ctx, SubjectDocumentUploaded, event)
}

func (b *Bus) PublishDocumentReviewed(ctx context.Context, event domain.DocumentReviewedEvent) error {
	return b.publish(ctx, SubjectDocumentReviewed, event)
}

func (b *Bus) PublishMessageProcessed(ctx context.Context, event domain.MessageProcessedEvent) error {
	return b.publish(ctx, SubjectMessageProcessed, event)
}

func (b *Bus) PublishScenarioCompleted(ctx context.Context, event domain.ScenarioCompletedEvent) error {
	return b.publish(ctx, SubjectScenarioCompleted, event)
}

func (b *Bus) publish(ctx context.Context, subject string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := b.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	if b.executor != nil {
		err = b.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(err)
}

// SubscribeDocumentUploaded blocks until ctx is cancelled, delivering
// uploaded-document events to handler through a worker queue group.
func (b *Bus) SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, domain.DocumentUploadedEvent) error) error {
	sub, err := b.conn.QueueSubscribe(SubjectDocumentUploaded, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var event domain.DocumentUploadedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("worker_event_decode_failed", "subject", SubjectDocumentUploaded, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("worker_handler_failed", "document_id", event.DocumentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
