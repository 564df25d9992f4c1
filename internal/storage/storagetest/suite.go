// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/storage"
)

// Suite runs the storage contract against the Storage returned by NewStorage.
// Backends embed it and provide NewStorage from their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var createdAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Seed inserts a production-seeded player after applying mutate
func (s *Suite) Seed(id model.PlayerID, mutate func(p *model.Player)) {
	p := model.NewPlayer(id, model.SeedProduction, createdAt)
	if mutate != nil {
		mutate(p)
	}
	created, err := s.Storage.EnsurePlayer(s.Ctx, p)
	s.Require().NoError(err)
	s.Require().True(created)
}

// Get reads a player that must exist
func (s *Suite) Get(id model.PlayerID) *model.Player {
	p, err := s.Storage.GetPlayer(s.Ctx, id)
	s.Require().NoError(err)
	return p
}

// EnsurePlayer tests

func (s *Suite) TestEnsurePlayerCreatesOnce() {
	p := model.NewPlayer("player-1", model.SeedDebug, createdAt)

	created, err := s.Storage.EnsurePlayer(s.Ctx, p)
	s.Require().NoError(err)
	s.True(created)

	again := model.NewPlayer("player-1", model.SeedProduction, createdAt)
	created, err = s.Storage.EnsurePlayer(s.Ctx, again)
	s.Require().NoError(err)
	s.False(created)

	// The second ensure must not overwrite the first seed
	stored := s.Get("player-1")
	s.Equal(int64(127), stored.Guns)
	s.Equal(int64(101010), stored.Balance)
	s.True(stored.CreatedAt.Equal(createdAt))
}

func (s *Suite) TestEnsurePlayerConcurrentInsertsOnce() {
	const callers = 16
	var wg sync.WaitGroup
	results := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.Storage.EnsurePlayer(s.Ctx, model.NewPlayer("racer", model.SeedProduction, createdAt))
			s.NoError(err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	inserts := 0
	for created := range results {
		if created {
			inserts++
		}
	}
	s.Equal(1, inserts)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerRoundTripsFields() {
	s.Seed("player-1", func(p *model.Player) {
		p.Guns = 3
		p.Vest = 2
		p.IsVested = true
		p.Medkit = 1
	})

	p := s.Get("player-1")
	s.Equal(model.PlayerID("player-1"), p.ID)
	s.Equal(int64(50), p.Balance)
	s.Equal(int64(3), p.Guns)
	s.Equal(int64(2), p.Vest)
	s.True(p.IsVested)
	s.Equal(int64(1), p.Medkit)
	s.False(p.Incapacitated)
	s.Nil(p.LastIncapacitatedAt)
}

// Adjust tests

func (s *Suite) TestAdjustAddsAndReturnsNewValue() {
	s.Seed("player-1", nil)

	v, err := s.Storage.Adjust(s.Ctx, "player-1", model.FieldGuns, 5, 0)
	s.Require().NoError(err)
	s.Equal(int64(5), v)
	s.Equal(int64(5), s.Get("player-1").Guns)
}

func (s *Suite) TestAdjustClampsAtFloor() {
	s.Seed("player-1", nil)

	v, err := s.Storage.Adjust(s.Ctx, "player-1", model.FieldBalance, -500, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), v)

	v, err = s.Storage.Adjust(s.Ctx, "player-1", model.FieldMedkit, -1, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), v)
}

func (s *Suite) TestAdjustVestToZeroDisarms() {
	s.Seed("player-1", func(p *model.Player) {
		p.Vest = 1
		p.IsVested = true
	})

	v, err := s.Storage.Adjust(s.Ctx, "player-1", model.FieldVest, -3, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), v)
	s.False(s.Get("player-1").IsVested)
}

func (s *Suite) TestAdjustUnknownPlayer() {
	_, err := s.Storage.Adjust(s.Ctx, "ghost", model.FieldGuns, 1, 0)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestAdjustUnknownField() {
	s.Seed("player-1", nil)
	_, err := s.Storage.Adjust(s.Ctx, "player-1", model.Field("hp"), 1, 0)
	s.ErrorIs(err, model.ErrUnknownField)
}

func (s *Suite) TestAdjustConcurrentNoLostUpdates() {
	s.Seed("player-1", nil)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.Adjust(s.Ctx, "player-1", model.FieldGuns, 1, 0)
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(int64(workers), s.Get("player-1").Guns)
}

// Consume tests

func (s *Suite) TestConsumeSpends() {
	s.Seed("player-1", func(p *model.Player) { p.Guns = 2 })

	remaining, ok, err := s.Storage.Consume(s.Ctx, "player-1", model.FieldGuns, 1)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(int64(1), remaining)
}

func (s *Suite) TestConsumeInsufficientLeavesCounter() {
	s.Seed("player-1", nil)

	remaining, ok, err := s.Storage.Consume(s.Ctx, "player-1", model.FieldMedkit, 1)
	s.Require().NoError(err)
	s.False(ok)
	s.Equal(int64(0), remaining)
	s.Equal(int64(0), s.Get("player-1").Medkit)
}

func (s *Suite) TestConsumeUnknownPlayer() {
	_, _, err := s.Storage.Consume(s.Ctx, "ghost", model.FieldGuns, 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestConsumeConcurrentNeverOverspends() {
	s.Seed("player-1", func(p *model.Player) { p.Guns = 5 })

	const workers = 12
	var wg sync.WaitGroup
	spent := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.Storage.Consume(s.Ctx, "player-1", model.FieldGuns, 1)
			s.NoError(err)
			spent <- ok
		}()
	}
	wg.Wait()
	close(spent)

	successes := 0
	for ok := range spent {
		if ok {
			successes++
		}
	}
	s.Equal(5, successes)
	s.Equal(int64(0), s.Get("player-1").Guns)
}

// SetFlag tests

func (s *Suite) TestSetFlagArmsVest() {
	s.Seed("player-1", func(p *model.Player) { p.Vest = 2 })

	armed, err := s.Storage.SetFlag(s.Ctx, "player-1", model.FlagIsVested, true)
	s.Require().NoError(err)
	s.True(armed)
	s.True(s.Get("player-1").IsVested)

	armed, err = s.Storage.SetFlag(s.Ctx, "player-1", model.FlagIsVested, false)
	s.Require().NoError(err)
	s.False(armed)
}

func (s *Suite) TestSetFlagCannotArmWithoutVest() {
	s.Seed("player-1", nil)

	armed, err := s.Storage.SetFlag(s.Ctx, "player-1", model.FlagIsVested, true)
	s.Require().NoError(err)
	s.False(armed)
	s.False(s.Get("player-1").IsVested)
}

func (s *Suite) TestSetFlagUnknownPlayer() {
	_, err := s.Storage.SetFlag(s.Ctx, "ghost", model.FlagIsVested, true)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// AbsorbShot tests

func (s *Suite) TestAbsorbShotKeepsArmedWhileChargesRemain() {
	s.Seed("player-1", func(p *model.Player) {
		p.Vest = 2
		p.IsVested = true
	})

	absorbed, vest, err := s.Storage.AbsorbShot(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.True(absorbed)
	s.Equal(int64(1), vest)
	s.True(s.Get("player-1").IsVested)
}

func (s *Suite) TestAbsorbShotLastChargeDisarms() {
	s.Seed("player-1", func(p *model.Player) {
		p.Vest = 1
		p.IsVested = true
	})

	absorbed, vest, err := s.Storage.AbsorbShot(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.True(absorbed)
	s.Equal(int64(0), vest)

	p := s.Get("player-1")
	s.False(p.IsVested)
	s.Equal(int64(0), p.Vest)
}

func (s *Suite) TestAbsorbShotUnarmedVestDoesNothing() {
	s.Seed("player-1", func(p *model.Player) { p.Vest = 3 })

	absorbed, vest, err := s.Storage.AbsorbShot(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.False(absorbed)
	s.Equal(int64(3), vest)
}

func (s *Suite) TestAbsorbShotUnknownPlayer() {
	_, _, err := s.Storage.AbsorbShot(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestAbsorbShotConcurrentSingleCharge() {
	s.Seed("player-1", func(p *model.Player) {
		p.Vest = 1
		p.IsVested = true
	})

	const shooters = 10
	var wg sync.WaitGroup
	absorptions := make(chan bool, shooters)
	for i := 0; i < shooters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			absorbed, _, err := s.Storage.AbsorbShot(s.Ctx, "player-1")
			s.NoError(err)
			absorptions <- absorbed
		}()
	}
	wg.Wait()
	close(absorptions)

	count := 0
	for absorbed := range absorptions {
		if absorbed {
			count++
		}
	}
	s.Equal(1, count)
	s.Equal(int64(0), s.Get("player-1").Vest)
}

// Incapacitation mirror tests

func (s *Suite) TestMarkAndClearIncapacitated() {
	s.Seed("player-1", nil)
	at := createdAt.Add(time.Hour)

	changed, err := s.Storage.MarkIncapacitated(s.Ctx, "player-1", at)
	s.Require().NoError(err)
	s.True(changed)

	p := s.Get("player-1")
	s.True(p.Incapacitated)
	s.Require().NotNil(p.LastIncapacitatedAt)
	s.True(p.LastIncapacitatedAt.Equal(at))

	changed, err = s.Storage.MarkIncapacitated(s.Ctx, "player-1", at.Add(time.Minute))
	s.Require().NoError(err)
	s.False(changed)

	changed, err = s.Storage.ClearIncapacitated(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.True(changed)

	p = s.Get("player-1")
	s.False(p.Incapacitated)
	// The timestamp survives the clear as history
	s.Require().NotNil(p.LastIncapacitatedAt)
	s.True(p.LastIncapacitatedAt.Equal(at))

	changed, err = s.Storage.ClearIncapacitated(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.False(changed)
}

func (s *Suite) TestMarkIncapacitatedUnknownPlayer() {
	_, err := s.Storage.MarkIncapacitated(s.Ctx, "ghost", createdAt)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Storage.ClearIncapacitated(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Charge tests

func (s *Suite) newCharge(id model.OutcomeID) *model.Charge {
	markedAt := createdAt.Add(time.Minute)
	return &model.Charge{
		OutcomeID: id,
		Action:    model.ActionShoot,
		Actor:     "player-1",
		Target:    "player-2",
		MarkedAt:  &markedAt,
		ExpiresAt: createdAt.Add(10 * time.Minute),
	}
}

func (s *Suite) TestClaimChargeOnce() {
	s.Require().NoError(s.Storage.RecordCharge(s.Ctx, s.newCharge("outcome-1"), createdAt))

	charge, ok, err := s.Storage.ClaimCharge(s.Ctx, "outcome-1", createdAt)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(model.ActionShoot, charge.Action)
	s.Equal(model.PlayerID("player-1"), charge.Actor)
	s.Equal(model.PlayerID("player-2"), charge.Target)
	s.Require().NotNil(charge.MarkedAt)
	s.Equal(createdAt.Add(time.Minute).UnixMilli(), charge.MarkedAt.UnixMilli())

	_, ok, err = s.Storage.ClaimCharge(s.Ctx, "outcome-1", createdAt)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestClaimChargeUnknown() {
	_, ok, err := s.Storage.ClaimCharge(s.Ctx, "never-issued", createdAt)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestClaimChargeExpired() {
	s.Require().NoError(s.Storage.RecordCharge(s.Ctx, s.newCharge("outcome-1"), createdAt))

	_, ok, err := s.Storage.ClaimCharge(s.Ctx, "outcome-1", createdAt.Add(10*time.Minute))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestClaimChargeConcurrentSingleWinner() {
	s.Require().NoError(s.Storage.RecordCharge(s.Ctx, s.newCharge("outcome-1"), createdAt))

	const claimers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.Storage.ClaimCharge(s.Ctx, "outcome-1", createdAt)
			s.NoError(err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
}
