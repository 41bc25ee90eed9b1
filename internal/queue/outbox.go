package queue

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/vespanova/booking-api/internal/repository"
	queue_publisher "github.com/vespanova/booking-api/internal/service"
)

// Drainer moves pending outbox rows to the message broker. It runs as
// a background task so webhook latency or broker downtime never blocks
// the user-facing transaction that appended the row. A row that fails
// to publish stays pending and is retried on the next tick; a row is
// only marked dispatched after the broker accepted it.
type Drainer struct {
	db       *sql.DB
	outbox   *repository.OutboxRepo
	interval time.Duration
	batch    int
}

// NewDrainer returns a drainer polling every interval with the given
// batch size. Zero values select sensible defaults.
func NewDrainer(db *sql.DB, outbox *repository.OutboxRepo, interval time.Duration, batch int) *Drainer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	return &Drainer{db: db, outbox: outbox, interval: interval, batch: batch}
}

// Run drains until ctx is cancelled. Errors are logged and the loop
// keeps going; the outbox is durable so nothing is lost between ticks.
func (d *Drainer) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.drainOnce(ctx); err != nil {
				log.Printf("outbox-drainer: drain failed: %v", err)
			}
		}
	}
}

// drainOnce claims a batch of pending rows (SKIP LOCKED keeps
// concurrent drainers apart), publishes each to the broker and marks
// the published ones dispatched. The claim and the marks commit
// together.
func (d *Drainer) drainOnce(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	recs, err := d.outbox.ListPending(ctx, tx, d.batch)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		committed = true
		return tx.Commit()
	}

	conn, ch, err := queue_publisher.Open(EventsQueueName)
	if err != nil {
		// Broker down: leave every claimed row pending.
		return err
	}
	defer func() {
		_ = ch.Close()
		_ = conn.Close()
	}()

	for _, rec := range recs {
		if err := queue_publisher.Publish(ctx, ch, EventsQueueName, rec.Payload); err != nil {
			if err2 := d.outbox.BumpAttemptTx(ctx, tx, rec.ID); err2 != nil {
				return err2
			}
			continue
		}
		if err := d.outbox.MarkDispatchedTx(ctx, tx, rec.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
