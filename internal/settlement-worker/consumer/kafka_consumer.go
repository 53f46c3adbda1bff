package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type SettlementRepo interface {
	SettleBets(ctx context.Context, eventID, winner string) error
	RefreshLeaderboard(ctx context.Context) error
}

type OddsInvalidator interface {
	Invalidate(ctx context.Context, eventID string) error
}

type LeaderboardInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Processor consome event_settled, liquida as apostas do evento e
// recalcula o ranking. Falhas persistentes vão para a DLQ.
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	Repo        SettlementRepo
	Odds        OddsInvalidator        // opcional
	Leaderboard LeaderboardInvalidator // opcional
	DLQ         kafka.MessageWriter    // opcional

	Retries     int           // default 3
	Backoff     time.Duration // espera linear: Backoff*(tentativa); default 300ms
	ReadBackoff time.Duration // default 500ms

	OnConsumed  func()
	OnProcessed func()
	OnError     func(string)
}

func (p *Processor) Run(ctx context.Context) error {
	readBackoff := p.ReadBackoff
	if readBackoff <= 0 {
		readBackoff = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			if !sleep(ctx, readBackoff) {
				return ctx.Err()
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.EventSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.EventID == "" || !validWinner(ev.Winner) {
			p.Log.Error("invalid event_settled", zap.ByteString("value", m.Value), zap.Error(err))
			p.fail("decode")
			continue
		}

		if err := p.Handle(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Error("settlement failed", zap.String("event_id", ev.EventID), zap.Error(err))
		}
	}
}

// Handle liquida um evento: settle_bets com retentativas, depois ranking e caches
func (p *Processor) Handle(ctx context.Context, ev events.EventSettled) error {
	if err := p.settleWithRetry(ctx, ev); err != nil {
		p.fail("settle")
		p.deadLetter(ctx, ev, err)
		return err
	}

	// ranking desatualizado não desfaz a liquidação
	if err := p.Repo.RefreshLeaderboard(ctx); err != nil {
		p.Log.Warn("refresh leaderboard failed", zap.Error(err))
		p.fail("refresh")
	}
	if p.Leaderboard != nil {
		if err := p.Leaderboard.InvalidateAll(ctx); err != nil {
			p.Log.Warn("leaderboard cache invalidate failed", zap.Error(err))
			p.fail("cache")
		}
	}
	if p.Odds != nil {
		if err := p.Odds.Invalidate(ctx, ev.EventID); err != nil {
			p.Log.Warn("odds cache invalidate failed", zap.String("event_id", ev.EventID), zap.Error(err))
			p.fail("cache")
		}
	}

	p.Log.Info("event settled",
		zap.String("event_id", ev.EventID),
		zap.String("winner", ev.Winner),
		zap.String("settled_by", ev.SettledBy),
	)
	if p.OnProcessed != nil {
		p.OnProcessed()
	}
	return nil
}

func (p *Processor) settleWithRetry(ctx context.Context, ev events.EventSettled) error {
	retries := p.Retries
	if retries <= 0 {
		retries = 3
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}

	err := p.Repo.SettleBets(ctx, ev.EventID, ev.Winner)
	for i := 0; err != nil && i < retries; i++ {
		p.Log.Warn("settle_bets failed, retrying", zap.String("event_id", ev.EventID), zap.Int("attempt", i+1), zap.Error(err))
		if !sleep(ctx, time.Duration(i+1)*backoff) {
			return ctx.Err()
		}
		err = p.Repo.SettleBets(ctx, ev.EventID, ev.Winner)
	}
	return err
}

func (p *Processor) deadLetter(ctx context.Context, ev events.EventSettled, cause error) {
	if p.DLQ == nil {
		return
	}
	b, err := json.Marshal(ev)
	if err == nil {
		err = kafka.WriteJSON(ctx, p.DLQ, ev.EventID, b)
	}
	if err != nil {
		p.Log.Error("dlq write failed", zap.String("event_id", ev.EventID), zap.NamedError("cause", cause), zap.Error(err))
		p.fail("dlq")
		return
	}
	p.Log.Warn("event_settled sent to dlq", zap.String("event_id", ev.EventID), zap.Error(cause))
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func validWinner(w string) bool {
	return w == "a" || w == "b" || w == "draw"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
