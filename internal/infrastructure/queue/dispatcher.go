package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-api/internal/pkg/metrics"
	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/infrastructure/mail"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Deduper remembers deliveries so a repeated lifecycle email is suppressed.
type Deduper interface {
	IsDuplicate(ctx context.Context, kind, email string) (bool, error)
	Mark(ctx context.Context, kind, email string) error
}

// MailDispatcher routes lifecycle emails to a fixed set of workers using
// consistent hashing on the recipient, so mails to one address go out in order.
// Enqueueing never blocks: a full worker channel drops the message.
type MailDispatcher struct {
	workers []chan mail.Message
	sender  Sender
	dedup   Deduper
	log     zerolog.Logger
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. dedup may be nil.
func NewMailDispatcher(numWorkers int, sender Sender, dedup Deduper, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan mail.Message, numWorkers),
		sender:  sender,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan mail.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

func (d *MailDispatcher) Welcome(user *domain.User) {
	d.Enqueue(mail.Message{Kind: mail.KindWelcome, To: user.Email, Name: user.Name})
}

func (d *MailDispatcher) Farewell(user *domain.User) {
	d.Enqueue(mail.Message{Kind: mail.KindFarewell, To: user.Email, Name: user.Name})
}

// Enqueue hands msg to the worker responsible for its recipient.
func (d *MailDispatcher) Enqueue(msg mail.Message) {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.MailsTotal.WithLabelValues(string(msg.Kind), "dropped").Inc()
		d.log.Warn().
			Str("kind", string(msg.Kind)).
			Int("worker_id", idx).
			Msg("mail queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan mail.Message) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, msg)
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, workerID int, msg mail.Message) {
	kind := string(msg.Kind)
	log := d.log.With().Str("kind", kind).Int("worker_id", workerID).Logger()

	if d.dedup != nil {
		dup, err := d.dedup.IsDuplicate(ctx, kind, msg.To)
		if err != nil {
			log.Warn().Err(err).Msg("mail dedup check failed, sending anyway")
		} else if dup {
			metrics.MailsTotal.WithLabelValues(kind, "duplicate").Inc()
			log.Debug().Msg("duplicate mail suppressed")
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, msg)
	metrics.MailSendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MailsTotal.WithLabelValues(kind, "failed").Inc()
		log.Error().Err(err).Msg("mail delivery failed")
		return
	}
	metrics.MailsTotal.WithLabelValues(kind, "sent").Inc()

	if d.dedup != nil {
		if err := d.dedup.Mark(ctx, kind, msg.To); err != nil {
			log.Warn().Err(err).Msg("mail dedup mark failed")
		}
	}
}
