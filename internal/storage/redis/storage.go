package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each player is one hash; mutations run as Lua scripts against that hash.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	client, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg), nil
}

// Dial opens a client for cfg and verifies the connection
func Dial(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying client so other components can share the pool
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping round-trips to the server
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Pinger  = (*Storage)(nil)
)

func (s *Storage) EnsurePlayer(ctx context.Context, player *model.Player) (bool, error) {
	args := []any{
		hashID, string(player.ID),
		string(model.FieldBalance), player.Balance,
		string(model.FieldGuns), player.Guns,
		string(model.FieldVest), player.Vest,
		string(model.FieldMedkit), player.Medkit,
		hashIsVested, boolArg(player.IsVested && player.Vest > 0),
		hashIncapacitated, boolArg(player.Incapacitated),
		hashLastIncapacitatedAt, timeArg(player.LastIncapacitatedAt),
		hashCreatedAt, player.CreatedAt.UnixMilli(),
	}
	created, err := ensureScript.Run(ctx, s.client, []string{playerKey(player.ID)}, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("ensure player: %w", err)
	}
	return created == 1, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	values, err := s.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return decodePlayer(values)
}

func (s *Storage) Adjust(ctx context.Context, id model.PlayerID, field model.Field, delta, floor int64) (int64, error) {
	if !field.Valid() {
		return 0, model.ErrUnknownField
	}
	reply, err := s.run(ctx, adjustScript, id, string(field), delta, floor)
	if err != nil {
		return 0, fmt.Errorf("adjust %s: %w", field, err)
	}
	return reply[1], nil
}

func (s *Storage) Consume(ctx context.Context, id model.PlayerID, field model.Field, amount int64) (int64, bool, error) {
	if !field.Valid() {
		return 0, false, model.ErrUnknownField
	}
	reply, err := s.run(ctx, consumeScript, id, string(field), amount)
	if err != nil {
		return 0, false, fmt.Errorf("consume %s: %w", field, err)
	}
	return reply[2], reply[1] == 1, nil
}

func (s *Storage) SetFlag(ctx context.Context, id model.PlayerID, flag model.Flag, value bool) (bool, error) {
	if !flag.Valid() {
		return false, model.ErrUnknownField
	}
	reply, err := s.run(ctx, setVestedScript, id, boolArg(value))
	if err != nil {
		return false, fmt.Errorf("set %s: %w", flag, err)
	}
	return reply[1] == 1, nil
}

func (s *Storage) AbsorbShot(ctx context.Context, id model.PlayerID) (bool, int64, error) {
	reply, err := s.run(ctx, absorbScript, id)
	if err != nil {
		return false, 0, fmt.Errorf("absorb shot: %w", err)
	}
	return reply[1] == 1, reply[2], nil
}

func (s *Storage) MarkIncapacitated(ctx context.Context, id model.PlayerID, at time.Time) (bool, error) {
	reply, err := s.run(ctx, markScript, id, at.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("mark incapacitated: %w", err)
	}
	return reply[1] == 1, nil
}

func (s *Storage) ClearIncapacitated(ctx context.Context, id model.PlayerID) (bool, error) {
	reply, err := s.run(ctx, clearScript, id)
	if err != nil {
		return false, fmt.Errorf("clear incapacitated: %w", err)
	}
	return reply[1] == 1, nil
}

// RecordCharge stores the charge as JSON with a TTL ending at ExpiresAt
func (s *Storage) RecordCharge(ctx context.Context, charge *model.Charge, now time.Time) error {
	ttl := charge.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(charge)
	if err != nil {
		return fmt.Errorf("encode charge: %w", err)
	}
	if err := s.client.Set(ctx, chargeKey(charge.OutcomeID), data, ttl).Err(); err != nil {
		return fmt.Errorf("record charge: %w", err)
	}
	return nil
}

// ClaimCharge reads and deletes the charge with GETDEL, so one caller wins
func (s *Storage) ClaimCharge(ctx context.Context, id model.OutcomeID, now time.Time) (*model.Charge, bool, error) {
	data, err := s.client.GetDel(ctx, chargeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim charge: %w", err)
	}
	var charge model.Charge
	if err := json.Unmarshal(data, &charge); err != nil {
		return nil, false, fmt.Errorf("decode charge: %w", err)
	}
	if !now.Before(charge.ExpiresAt) {
		return nil, false, nil
	}
	return &charge, true, nil
}

// run executes a player script and maps the leading existence flag to ErrPlayerNotFound
func (s *Storage) run(ctx context.Context, script *redis.Script, id model.PlayerID, args ...any) ([]int64, error) {
	reply, err := script.Run(ctx, s.client, []string{playerKey(id)}, args...).Int64Slice()
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 || reply[0] == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return reply, nil
}

func decodePlayer(values map[string]string) (*model.Player, error) {
	p := &model.Player{
		ID:            model.PlayerID(values[hashID]),
		IsVested:      values[hashIsVested] == "1",
		Incapacitated: values[hashIncapacitated] == "1",
	}
	counters := map[model.Field]*int64{
		model.FieldBalance: &p.Balance,
		model.FieldGuns:    &p.Guns,
		model.FieldVest:    &p.Vest,
		model.FieldMedkit:  &p.Medkit,
	}
	for field, dst := range counters {
		v, err := strconv.ParseInt(values[string(field)], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		*dst = v
	}
	if raw := values[hashLastIncapacitatedAt]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", hashLastIncapacitatedAt, err)
		}
		at := time.UnixMilli(ms).UTC()
		p.LastIncapacitatedAt = &at
	}
	if raw := values[hashCreatedAt]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", hashCreatedAt, err)
		}
		p.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return p, nil
}

func boolArg(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func timeArg(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
