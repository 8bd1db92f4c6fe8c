package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrWorkerUnavailable is returned when the worker cannot be reached or
// does not answer within the RPC timeout.  Callers cannot distinguish a
// dead broker from a silent worker, and are not meant to.
var ErrWorkerUnavailable = errors.New("ingestion worker unavailable")

// WorkerClient is the gateway-side view of the worker boundary.  The
// ingestion handler depends on this interface so tests can substitute a
// fake worker.
type WorkerClient interface {
	Ingest(ctx context.Context, document, id string) (IngestReply, error)
	Status(ctx context.Context, id string) (StatusReply, error)
	Embeddings(ctx context.Context, id string) (EmbeddingsReply, error)
}

// RPCClient implements WorkerClient over RabbitMQ.  Each call publishes a
// Request to the worker's queue with a per-call exclusive reply queue and
// correlation id, then waits for the matching reply.  Connections are
// dialed per call; the RPC volume here is low and a fresh connection
// avoids carrying broken channel state across broker restarts.
type RPCClient struct {
	url     string
	queue   string
	timeout time.Duration
}

// NewRPCClient builds a client for the worker RPC queue.
func NewRPCClient(url, queue string, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RPCClient{url: url, queue: queue, timeout: timeout}
}

// Ingest submits a document for ingestion and waits for the worker's
// acknowledgment.
func (c *RPCClient) Ingest(ctx context.Context, document, id string) (IngestReply, error) {
	var reply IngestReply
	err := c.call(ctx, PatternIngest, IngestRequest{Document: document, ID: id}, &reply)
	return reply, err
}

// Status queries the worker's live status for a job.
func (c *RPCClient) Status(ctx context.Context, id string) (StatusReply, error) {
	var reply StatusReply
	err := c.call(ctx, PatternStatus, StatusRequest{ID: id}, &reply)
	return reply, err
}

// Embeddings retrieves the embedding vector for a completed job.
func (c *RPCClient) Embeddings(ctx context.Context, id string) (EmbeddingsReply, error) {
	var reply EmbeddingsReply
	err := c.call(ctx, PatternEmbeddings, EmbeddingsRequest{ID: id}, &reply)
	return reply, err
}

// call performs one request/response round trip.  Every transport
// failure folds into ErrWorkerUnavailable; the underlying cause is
// logged but never surfaced to HTTP clients.
func (c *RPCClient) call(ctx context.Context, pattern string, payload, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		log.Printf("worker-rpc: dial failed: %v", err)
		return ErrWorkerUnavailable
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("worker-rpc: channel open failed: %v", err)
		return ErrWorkerUnavailable
	}
	defer func() { _ = ch.Close() }()

	// The request queue must exist before publishing (idempotent).
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		log.Printf("worker-rpc: queue declare failed: %v", err)
		return ErrWorkerUnavailable
	}

	// Anonymous exclusive queue for this call's reply.
	replyQ, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		log.Printf("worker-rpc: reply queue declare failed: %v", err)
		return ErrWorkerUnavailable
	}
	deliveries, err := ch.Consume(replyQ.Name, "", true, true, false, false, nil)
	if err != nil {
		log.Printf("worker-rpc: reply consume failed: %v", err)
		return ErrWorkerUnavailable
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("worker-rpc: marshal payload: %w", err)
	}
	body, err := json.Marshal(Request{Pattern: pattern, Data: data})
	if err != nil {
		return fmt.Errorf("worker-rpc: marshal request: %w", err)
	}
	corr := uuid.NewString()

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		c.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: corr,
			ReplyTo:       replyQ.Name,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	); err != nil {
		log.Printf("worker-rpc: publish failed: %v", err)
		return ErrWorkerUnavailable
	}

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return ErrWorkerUnavailable
			}
			if d.CorrelationId != corr {
				continue // stale reply on a reused queue; skip
			}
			if err := json.Unmarshal(d.Body, out); err != nil {
				log.Printf("worker-rpc: unmarshal reply failed: %v", err)
				return ErrWorkerUnavailable
			}
			return nil
		case <-ctx.Done():
			return ErrWorkerUnavailable
		}
	}
}
