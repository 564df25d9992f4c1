package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.Mutex
	players map[model.PlayerID]*model.Player
	charges map[model.OutcomeID]model.Charge
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		charges: make(map[model.OutcomeID]model.Charge),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) EnsurePlayer(ctx context.Context, player *model.Player) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; ok {
		return false, nil
	}
	p := *player
	p.LastIncapacitatedAt = copyTime(player.LastIncapacitatedAt)
	s.players[player.ID] = &p
	return true, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	// Return a copy so callers never alias stored state
	out := *p
	out.LastIncapacitatedAt = copyTime(p.LastIncapacitatedAt)
	return &out, nil
}

func (s *Storage) Adjust(ctx context.Context, id model.PlayerID, field model.Field, delta, floor int64) (int64, error) {
	counter, err := counterOf(field)
	if err != nil {
		return 0, err
	}
	var result int64
	err = s.update(ctx, id, func(p *model.Player) {
		v := counter(p)
		*v = max(*v+delta, floor)
		result = *v
		if p.Vest == 0 {
			p.IsVested = false
		}
	})
	return result, err
}

func (s *Storage) Consume(ctx context.Context, id model.PlayerID, field model.Field, amount int64) (int64, bool, error) {
	counter, err := counterOf(field)
	if err != nil {
		return 0, false, err
	}
	var remaining int64
	var ok bool
	err = s.update(ctx, id, func(p *model.Player) {
		v := counter(p)
		if *v >= amount {
			*v -= amount
			ok = true
		}
		remaining = *v
		if p.Vest == 0 {
			p.IsVested = false
		}
	})
	return remaining, ok, err
}

func (s *Storage) SetFlag(ctx context.Context, id model.PlayerID, flag model.Flag, value bool) (bool, error) {
	if !flag.Valid() {
		return false, model.ErrUnknownField
	}
	var result bool
	err := s.update(ctx, id, func(p *model.Player) {
		p.IsVested = value && p.Vest > 0
		result = p.IsVested
	})
	return result, err
}

func (s *Storage) AbsorbShot(ctx context.Context, id model.PlayerID) (bool, int64, error) {
	var absorbed bool
	var vest int64
	err := s.update(ctx, id, func(p *model.Player) {
		if p.IsVested && p.Vest > 0 {
			p.Vest--
			p.IsVested = p.Vest > 0
			absorbed = true
		}
		vest = p.Vest
	})
	return absorbed, vest, err
}

func (s *Storage) MarkIncapacitated(ctx context.Context, id model.PlayerID, at time.Time) (bool, error) {
	var changed bool
	err := s.update(ctx, id, func(p *model.Player) {
		if p.Incapacitated {
			return
		}
		p.Incapacitated = true
		p.LastIncapacitatedAt = &at
		changed = true
	})
	return changed, err
}

func (s *Storage) ClearIncapacitated(ctx context.Context, id model.PlayerID) (bool, error) {
	var changed bool
	err := s.update(ctx, id, func(p *model.Player) {
		changed = p.Incapacitated
		p.Incapacitated = false
	})
	return changed, err
}

func (s *Storage) RecordCharge(ctx context.Context, charge *model.Charge, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.charges {
		if !now.Before(c.ExpiresAt) {
			delete(s.charges, id)
		}
	}
	c := *charge
	c.MarkedAt = copyTime(charge.MarkedAt)
	s.charges[charge.OutcomeID] = c
	return nil
}

func (s *Storage) ClaimCharge(ctx context.Context, id model.OutcomeID, now time.Time) (*model.Charge, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.charges[id]
	if !ok {
		return nil, false, nil
	}
	delete(s.charges, id)
	if !now.Before(c.ExpiresAt) {
		return nil, false, nil
	}
	return &c, true, nil
}

// update runs fn against the stored record while holding the lock
func (s *Storage) update(ctx context.Context, id model.PlayerID, fn func(p *model.Player)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	fn(p)
	return nil
}

func counterOf(field model.Field) (func(p *model.Player) *int64, error) {
	switch field {
	case model.FieldBalance:
		return func(p *model.Player) *int64 { return &p.Balance }, nil
	case model.FieldGuns:
		return func(p *model.Player) *int64 { return &p.Guns }, nil
	case model.FieldVest:
		return func(p *model.Player) *int64 { return &p.Vest }, nil
	case model.FieldMedkit:
		return func(p *model.Player) *int64 { return &p.Medkit }, nil
	}
	return nil, model.ErrUnknownField
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
