package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/document-gateway/internal/queue"
)

// Server consumes the ingestion RPC queue and serves the gateway's
// ingest/status/embeddings requests against the job table.  It runs a
// reconnect loop with exponential backoff and keeps running across
// broker restarts; per-message failures are logged and the message is
// rejected without requeue so a poison payload cannot wedge the queue.
type Server struct {
	url       string
	queueName string
	store     *Store
}

// NewServer builds an RPC server bound to the given job table.
func NewServer(url, queueName string, store *Store) *Server {
	return &Server{url: url, queueName: queueName, store: store}
}

// Run connects to RabbitMQ, declares the RPC queue (durable) and serves
// requests until the process exits.  It only returns on unrecoverable
// setup conditions; transient broker failures trigger a reconnect.
func (s *Server) Run() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(s.url)
		if err != nil {
			log.Printf("ingestion-worker: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := s.consumeLoop(conn); err != nil {
			log.Printf("ingestion-worker: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func (s *Server) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ingestion-worker: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(s.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(s.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := s.handle(ch, d); err != nil {
			log.Printf("ingestion-worker: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handle dispatches one RPC request and publishes the reply to the
// caller's reply queue with the original correlation id.
func (s *Server) handle(ch *amqp.Channel, d amqp.Delivery) error {
	var req queue.Request
	if err := json.Unmarshal(d.Body, &req); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}

	reply, err := s.Dispatch(req)
	if err != nil {
		return err
	}
	if d.ReplyTo == "" {
		return nil // fire-and-forget caller; nothing to answer
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx,
		"",        // default exchange
		d.ReplyTo, // per-call reply queue
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          body,
		},
	)
}

// Dispatch maps a request envelope onto the job table and returns the
// reply payload.  Unknown-id and not-completed conditions travel back as
// error fields in the reply, mirroring how the gateway's orchestrator
// expects to merge them into a single not-found outcome.
func (s *Server) Dispatch(req queue.Request) (interface{}, error) {
	switch req.Pattern {
	case queue.PatternIngest:
		var in queue.IngestRequest
		if err := json.Unmarshal(req.Data, &in); err != nil {
			return nil, fmt.Errorf("ingest payload: %w", err)
		}
		rec := s.store.Ingest(in.Document, in.ID)
		return queue.IngestReply{ID: rec.ID, Status: rec.Status}, nil

	case queue.PatternStatus:
		var in queue.StatusRequest
		if err := json.Unmarshal(req.Data, &in); err != nil {
			return nil, fmt.Errorf("status payload: %w", err)
		}
		status, err := s.store.GetStatus(in.ID)
		if err != nil {
			return queue.StatusReply{Error: "Not found"}, nil
		}
		return queue.StatusReply{ID: in.ID, Status: status}, nil

	case queue.PatternEmbeddings:
		var in queue.EmbeddingsRequest
		if err := json.Unmarshal(req.Data, &in); err != nil {
			return nil, fmt.Errorf("embeddings payload: %w", err)
		}
		vec, err := s.store.GetEmbeddings(in.ID)
		switch err {
		case nil:
			return queue.EmbeddingsReply{ID: in.ID, Embeddings: vec}, nil
		case ErrNotCompleted:
			return queue.EmbeddingsReply{Error: "Ingestion not completed yet"}, nil
		default:
			return queue.EmbeddingsReply{Error: "Not found"}, nil
		}

	default:
		return nil, fmt.Errorf("unknown pattern %q", req.Pattern)
	}
}
