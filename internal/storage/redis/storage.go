package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key writes run as Lua scripts so each operation is atomic.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
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
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrStorage, op, err)
}

// Hash field names
const (
	fieldID           = "id"
	fieldDisplayName  = "display_name"
	fieldPassphrase   = "passphrase"
	fieldUsername     = "username"
	fieldPasswordHash = "password_hash"
	fieldVisible      = "visible"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"

	fieldTotalMoneyEarned     = "total_money_earned"
	fieldReputation           = "reputation"
	fieldSkillLevelsSum       = "skill_levels_sum"
	fieldConsultantsCount     = "consultants_count"
	fieldAIToolTiersSum       = "ai_tool_tiers_sum"
	fieldManualTasksCompleted = "manual_tasks_completed"

	fieldSaveData = "save_data"
	fieldVersion  = "version"
)

// createPlayerScript claims the passphrase and writes the player, its zeroed
// scores and its index entry. Returns 0 if the passphrase is taken.
//
// KEYS: player, scores, passphrase index, players index
// ARGV: id, created_at score, updated_at, player hash field/value pairs...
var createPlayerScript = redis.NewScript(`
if redis.call('SETNX', KEYS[3], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 4))
redis.call('HSET', KEYS[2],
	'total_money_earned', '0', 'reputation', '0',
	'skill_levels_sum', '0', 'consultants_count', '0',
	'ai_tool_tiers_sum', '0', 'manual_tasks_completed', '0',
	'updated_at', ARGV[3])
redis.call('ZADD', KEYS[4], ARGV[2], ARGV[1])
return 1
`)

// setCredentialsScript attaches a username and password hash to a player,
// releasing any username it previously held.
// Returns -1 for an unknown player and 0 if another player owns the username.
//
// KEYS: player, username index
// ARGV: id, username, password hash, updated_at, username index prefix
var setCredentialsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local owner = redis.call('GET', KEYS[2])
if owner and owner ~= ARGV[1] then
	return 0
end
local old = redis.call('HGET', KEYS[1], 'username')
if old and old ~= '' and old ~= ARGV[2] then
	redis.call('DEL', ARGV[5] .. old)
end
redis.call('SET', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[1], 'username', ARGV[2], 'password_hash', ARGV[3], 'updated_at', ARGV[4])
return 1
`)

// updateFieldsScript sets hash fields only if the hash exists.
//
// KEYS: player
// ARGV: field/value pairs...
var updateFieldsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// mergeScoresScript raises each score field to the submitted value when that
// is larger. The submitted string is stored as-is so floats keep full precision.
//
// KEYS: player, scores
// ARGV: updated_at, field/value pairs...
var mergeScoresScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
for i = 2, #ARGV, 2 do
	local current = tonumber(redis.call('HGET', KEYS[2], ARGV[i]) or '0')
	if tonumber(ARGV[i + 1]) > current then
		redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
	end
end
redis.call('HSET', KEYS[2], 'updated_at', ARGV[1])
return 1
`)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	args := []any{
		string(player.ID),
		player.CreatedAt.UnixMicro(),
		formatTime(player.CreatedAt),
	}
	args = append(args, playerFields(player)...)

	created, err := createPlayerScript.Run(ctx, s.client, []string{
		playerKey(player.ID),
		scoresKey(player.ID),
		passphraseIndexKey(player.Passphrase),
		playersIndexKey(),
	}, args...).Int()
	if err != nil {
		return storageErr("create player", err)
	}
	if created == 0 {
		return model.ErrPassphraseTaken
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	fields, err := s.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, storageErr("get player", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return parsePlayer(fields)
}

func (s *Storage) GetPlayerByPassphrase(ctx context.Context, passphrase string) (*model.Player, error) {
	return s.getPlayerByIndex(ctx, passphraseIndexKey(passphrase))
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	return s.getPlayerByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) getPlayerByIndex(ctx context.Context, key string) (*model.Player, error) {
	id, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storageErr("lookup player index", err)
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) UpdateProfile(ctx context.Context, id model.PlayerID, update model.ProfileUpdate, now time.Time) error {
	args := []any{fieldUpdatedAt, formatTime(now)}
	if update.DisplayName != nil {
		args = append(args, fieldDisplayName, *update.DisplayName)
	}
	if update.Visible != nil {
		args = append(args, fieldVisible, formatBool(*update.Visible))
	}

	updated, err := updateFieldsScript.Run(ctx, s.client, []string{playerKey(id)}, args...).Int()
	if err != nil {
		return storageErr("update profile", err)
	}
	if updated == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) SetCredentials(ctx context.Context, id model.PlayerID, username, passwordHash string, now time.Time) error {
	result, err := setCredentialsScript.Run(ctx, s.client, []string{
		playerKey(id),
		usernameIndexKey(username),
	}, string(id), username, passwordHash, formatTime(now), usernameIndexPrefix()).Int()
	if err != nil {
		return storageErr("set credentials", err)
	}

	switch result {
	case -1:
		return model.ErrPlayerNotFound
	case 0:
		return model.ErrUsernameTaken
	}
	return nil
}

// Score operations

func (s *Storage) MergeScores(ctx context.Context, id model.PlayerID, scores model.ScoreComponents, now time.Time) error {
	args := []any{
		formatTime(now),
		fieldTotalMoneyEarned, formatFloat(scores.TotalMoneyEarned),
		fieldReputation, formatFloat(scores.Reputation),
		fieldSkillLevelsSum, formatInt(scores.SkillLevelsSum),
		fieldConsultantsCount, formatInt(scores.ConsultantsCount),
		fieldAIToolTiersSum, formatInt(scores.AIToolTiersSum),
		fieldManualTasksCompleted, formatInt(scores.ManualTasksCompleted),
	}

	merged, err := mergeScoresScript.Run(ctx, s.client, []string{playerKey(id), scoresKey(id)}, args...).Int()
	if err != nil {
		return storageErr("merge scores", err)
	}
	if merged == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) GetScores(ctx context.Context, id model.PlayerID) (*model.ScoreComponents, error) {
	fields, err := s.client.HGetAll(ctx, scoresKey(id)).Result()
	if err != nil {
		return nil, storageErr("get scores", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return parseScores(fields)
}

func (s *Storage) ListStandings(ctx context.Context) ([]model.Standing, error) {
	// ZRANGE orders by creation time, then lexically by id on ties
	ids, err := s.client.ZRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("list players", err)
	}
	if len(ids) == 0 {
		return []model.Standing{}, nil
	}

	// Fetch every player and score hash in one round trip
	pipe := s.client.Pipeline()
	playerCmds := make([]*redis.MapStringStringCmd, len(ids))
	scoreCmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		playerCmds[i] = pipe.HGetAll(ctx, playerKey(model.PlayerID(id)))
		scoreCmds[i] = pipe.HGetAll(ctx, scoresKey(model.PlayerID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storageErr("list standings", err)
	}

	standings := make([]model.Standing, 0, len(ids))
	for i := range ids {
		playerFields := playerCmds[i].Val()
		scoreFields := scoreCmds[i].Val()
		if len(playerFields) == 0 || len(scoreFields) == 0 {
			continue
		}

		player, err := parsePlayer(playerFields)
		if err != nil {
			return nil, err
		}
		if !player.Visible {
			continue
		}
		scores, err := parseScores(scoreFields)
		if err != nil {
			return nil, err
		}

		standings = append(standings, model.Standing{
			PlayerID:    player.ID,
			DisplayName: player.DisplayName,
			Scores:      *scores,
			CreatedAt:   player.CreatedAt,
		})
	}

	return standings, nil
}

// Cloud save operations

func (s *Storage) SaveCloudSave(ctx context.Context, save *model.CloudSave) error {
	exists, err := s.client.Exists(ctx, playerKey(save.PlayerID)).Result()
	if err != nil {
		return storageErr("check player", err)
	}
	if exists == 0 {
		return model.ErrPlayerNotFound
	}

	// The payload is stored as raw bytes so it reads back exactly as uploaded
	err = s.client.HSet(ctx, saveKey(save.PlayerID),
		fieldSaveData, []byte(save.Data),
		fieldVersion, formatInt(save.Version),
		fieldUpdatedAt, formatTime(save.UpdatedAt),
	).Err()
	if err != nil {
		return storageErr("save cloud save", err)
	}
	return nil
}

func (s *Storage) GetCloudSave(ctx context.Context, id model.PlayerID) (*model.CloudSave, error) {
	fields, err := s.client.HGetAll(ctx, saveKey(id)).Result()
	if err != nil {
		return nil, storageErr("get cloud save", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrSaveNotFound
	}

	version, err := parseInt(fields[fieldVersion])
	if err != nil {
		return nil, storageErr("decode cloud save", err)
	}
	updatedAt, err := parseTime(fields[fieldUpdatedAt])
	if err != nil {
		return nil, storageErr("decode cloud save", err)
	}

	return &model.CloudSave{
		PlayerID:  id,
		Data:      json.RawMessage(fields[fieldSaveData]),
		Version:   version,
		UpdatedAt: updatedAt,
	}, nil
}

// Hash encoding

func playerFields(p *model.Player) []any {
	return []any{
		fieldID, string(p.ID),
		fieldDisplayName, p.DisplayName,
		fieldPassphrase, p.Passphrase,
		fieldUsername, p.Username,
		fieldPasswordHash, p.PasswordHash,
		fieldVisible, formatBool(p.Visible),
		fieldCreatedAt, formatTime(p.CreatedAt),
		fieldUpdatedAt, formatTime(p.UpdatedAt),
	}
}

func parsePlayer(fields map[string]string) (*model.Player, error) {
	createdAt, err := parseTime(fields[fieldCreatedAt])
	if err != nil {
		return nil, storageErr("decode player", err)
	}
	updatedAt, err := parseTime(fields[fieldUpdatedAt])
	if err != nil {
		return nil, storageErr("decode player", err)
	}

	return &model.Player{
		ID:           model.PlayerID(fields[fieldID]),
		DisplayName:  fields[fieldDisplayName],
		Passphrase:   fields[fieldPassphrase],
		Username:     fields[fieldUsername],
		PasswordHash: fields[fieldPasswordHash],
		Visible:      fields[fieldVisible] == "1",
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func parseScores(fields map[string]string) (*model.ScoreComponents, error) {
	var (
		scores model.ScoreComponents
		err    error
	)
	floats := map[string]*float64{
		fieldTotalMoneyEarned: &scores.TotalMoneyEarned,
		fieldReputation:       &scores.Reputation,
	}
	for field, dst := range floats {
		if *dst, err = parseFloat(fields[field]); err != nil {
			return nil, storageErr("decode scores", err)
		}
	}
	ints := map[string]*int32{
		fieldSkillLevelsSum:       &scores.SkillLevelsSum,
		fieldConsultantsCount:     &scores.ConsultantsCount,
		fieldAIToolTiersSum:       &scores.AIToolTiersSum,
		fieldManualTasksCompleted: &scores.ManualTasksCompleted,
	}
	for field, dst := range ints {
		if *dst, err = parseInt(fields[field]); err != nil {
			return nil, storageErr("decode scores", err)
		}
	}
	if scores.UpdatedAt, err = parseTime(fields[fieldUpdatedAt]); err != nil {
		return nil, storageErr("decode scores", err)
	}
	return &scores, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseFloat treats a missing field as zero
func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func formatInt(n int32) string {
	return strconv.FormatInt(int64(n), 10)
}

// parseInt treats a missing field as zero
func parseInt(v string) (int32, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	return int32(n), err
}
