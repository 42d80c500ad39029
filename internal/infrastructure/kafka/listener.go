package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/jitter"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// Listener сообщает воркеру о появлении новых событий.
type Listener interface {
	// Listen блокируется до отмены ctx и пишет в wake при каждом уведомлении.
	Listen(ctx context.Context, wake chan<- struct{})
}

// PgListener подписывается на канал PostgreSQL через LISTEN
// на отдельном соединении и переподключается при обрыве.
type PgListener struct {
	dsn     string
	channel string
	logger  logger.Logger
	backoff jitter.Backoff
}

func NewPgListener(dsn, channel string, logger logger.Logger) *PgListener {
	return &PgListener{
		dsn:     dsn,
		channel: channel,
		logger:  logger,
		backoff: jitter.NewBackoff(time.Second, 30*time.Second),
	}
}

func (l *PgListener) Listen(ctx context.Context, wake chan<- struct{}) {
	for attempt := 0; ; attempt++ {
		err := l.listenOnce(ctx, wake)
		if ctx.Err() != nil {
			return
		}

		l.logger.Warnf("LISTEN %s lost: %v. Reconnecting...", l.channel, err)
		if err := l.backoff.Wait(ctx, attempt); err != nil {
			return
		}
	}
}

func (l *PgListener) listenOnce(ctx context.Context, wake chan<- struct{}) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return e.Wrap("failed to connect for LISTEN", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return e.Wrap("failed to LISTEN", err)
	}
	l.logger.Infof("Subscribed to '%s' channel", l.channel)

	// После переподключения могли быть пропущены уведомления.
	notify(wake)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}

		if notification.Channel == l.channel {
			notify(wake)
		}
	}
}

// notify не блокируется: одного ожидающего сигнала достаточно,
// воркер всё равно вычитывает outbox до конца.
func notify(wake chan<- struct{}) {
	select {
	case wake <- struct{}{}:
	default:
	}
}
