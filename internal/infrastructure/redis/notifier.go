package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

var _ ports.ChangePublisher = (*Notifier)(nil)

// Notifier publie et consomme les ChangeEvent sur un canal pub/sub.
// Livraison au plus une fois: un abonné absent rate l'événement, le recalcul périodique rattrape.
type Notifier struct {
	rdb     *goredis.Client
	channel string
	log     *logger.Logger
}

// NewNotifier construit le notificateur sur le canal donné.
func NewNotifier(rdb *goredis.Client, channel string, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{rdb: rdb, channel: channel, log: log}
}

// Publish sérialise l'événement en JSON.
func (n *Notifier) Publish(ctx context.Context, ev ports.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	return nil
}

// Subscribe appelle handle pour chaque événement jusqu'à l'annulation du contexte.
// Les messages illisibles et les erreurs du handler sont journalisés, jamais fatals.
func (n *Notifier) Subscribe(ctx context.Context, handle func(context.Context, ports.ChangeEvent) error) error {
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	n.log.Info().Str("channel", n.channel).Msg("abonné aux notifications de changement")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev ports.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				n.log.Warn().Err(err).Str("payload", msg.Payload).Msg("notification illisible ignorée")
				continue
			}
			if err := handle(ctx, ev); err != nil {
				n.log.Error().Err(err).Str("table", ev.Table).Str("record_id", ev.RecordID).Msg("traitement de la notification échoué")
			}
		}
	}
}
