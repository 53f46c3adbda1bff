package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

var errMissingEventID = errors.New("bet_placed without event_id")

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type OddsRepo interface {
	Recalculate(ctx context.Context, eventID string) (events.OddsSnapshot, error)
}

type OddsCache interface {
	Set(ctx context.Context, s events.OddsSnapshot) error
}

// Processor consome bet_placed, recalcula as odds do evento no banco e
// atualiza o cache Redis lido por GET /api/events/{id}/odds.
// Callbacks de métricas são opcionais.
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   OddsRepo
	Cache  OddsCache

	OnConsumed  func()       // métricas (counter++)
	OnProcessed func()       // métricas
	OnError     func(string) // métricas por fase

	ReadBackoff time.Duration // espera após falha de leitura (default 500ms)
}

// Run inicia o loop de consumo até ctx ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	backoff := p.ReadBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("decode")
			continue
		}

		if err := p.Handle(ctx, ev); err != nil {
			p.Log.Warn("odds update failed", zap.String("event_id", ev.EventID), zap.String("bet_id", ev.BetID), zap.Error(err))
		}
	}
}

// Handle processa um bet_placed já decodificado
func (p *Processor) Handle(ctx context.Context, ev events.BetPlaced) error {
	if ev.EventID == "" {
		p.fail("decode")
		return errMissingEventID
	}

	snap, err := p.Repo.Recalculate(ctx, ev.EventID)
	if err != nil {
		p.fail("db")
		return err
	}

	// cache fora do ar não invalida o recálculo já gravado
	if err := p.Cache.Set(ctx, snap); err != nil {
		p.Log.Warn("redis set failed", zap.String("event_id", ev.EventID), zap.Error(err))
		p.fail("cache")
	}

	p.Log.Debug("odds recalculated",
		zap.String("event_id", snap.EventID),
		zap.Float64("odds_a", snap.OddsA),
		zap.Float64("odds_b", snap.OddsB),
	)
	if p.OnProcessed != nil {
		p.OnProcessed()
	}
	return nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
