// Package notification delivers outbox events to the users they concern.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/model"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
)

// Notifier sends one message to one user.
type Notifier interface {
	Notify(ctx context.Context, user *model.User, message string) error
}

// Dispatcher publishes outbox events written by committed schedule mutations.
// Delivery is at least once: an event whose delivery failed for any
// recipient stays unpublished and is retried in full on the next run.
type Dispatcher struct {
	txm       repository.TxManager
	notifier  Notifier
	batchSize int
	logger    *zap.Logger
}

func NewDispatcher(txm repository.TxManager, notifier Notifier, batchSize int, logger *zap.Logger) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Dispatcher{
		txm:       txm,
		notifier:  notifier,
		batchSize: batchSize,
		logger:    logger,
	}
}

// DispatchPending отправляет одну пачку неопубликованных событий и возвращает число опубликованных
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	published := 0

	err := d.txm.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		events, err := repos.Outbox.FetchUnpublished(ctx, d.batchSize)
		if err != nil {
			return err
		}

		for _, event := range events {
			if err := d.deliver(ctx, repos, event); err != nil {
				d.logger.Warn("Failed to deliver event, will retry",
					zap.Stringer("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err),
				)
				continue
			}

			if err := repos.Outbox.MarkPublished(ctx, event.ID); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("dispatch outbox events: %w", err)
	}

	if published > 0 {
		d.logger.Info("Outbox events published", zap.Int("count", published))
	}

	return published, nil
}

func (d *Dispatcher) deliver(ctx context.Context, repos repository.Repositories, event model.Event) error {
	payload, err := event.Notification()
	if err != nil {
		// Событие с битым payload никогда не будет доставлено, не блокируем им очередь
		d.logger.Error("Dropping undecodable outbox event",
			zap.Stringer("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		return nil
	}

	recipients, err := resolveRecipients(ctx, repos.Users, payload)
	if err != nil {
		return err
	}

	for _, user := range recipients {
		if err := d.notifier.Notify(ctx, user, payload.Message); err != nil {
			return fmt.Errorf("notify user %d: %w", user.ID, err)
		}
	}

	d.logger.Debug("Event delivered",
		zap.Stringer("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Stringer("entity", payload.Entity),
		zap.Int("recipients", len(recipients)),
	)

	return nil
}

// resolveRecipients собирает адресатов по списку пользователей и учебной группе без повторов
func resolveRecipients(ctx context.Context, users repository.UserRepository, payload model.NotificationPayload) ([]*model.User, error) {
	var recipients []*model.User
	seen := make(map[int64]bool)
	add := func(list []*model.User) {
		for _, u := range list {
			if !seen[u.ID] {
				seen[u.ID] = true
				recipients = append(recipients, u)
			}
		}
	}

	if len(payload.UserIDs) > 0 {
		list, err := users.GetByIDs(ctx, payload.UserIDs)
		if err != nil {
			return nil, fmt.Errorf("get recipients: %w", err)
		}
		add(list)
	}

	if payload.GroupID != nil {
		list, err := users.ListByGroup(ctx, *payload.GroupID)
		if err != nil {
			return nil, fmt.Errorf("get group recipients: %w", err)
		}
		add(list)
	}

	return recipients, nil
}
