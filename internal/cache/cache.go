// Package cache records match actions into Redis for history and replay.
// Recording is strictly best-effort: a nil or unreachable client never
// blocks or fails a match.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when the historian is disabled.
var Rdb *redis.Client

// matchActionTTL bounds how long a finished match's action list lives.
const matchActionTTL = 24 * time.Hour

// MatchActionRecord is one entry in a match's action history.
type MatchActionRecord struct {
	MatchID       uuid.UUID              `json:"matchId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorSeat     int                    `json:"actorSeat"` // -1 for table-level events
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"` // unix milliseconds
}

// InitRedis connects the shared client. Call once at startup when the
// historian is enabled.
func InitRedis(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// matchActionKey returns the Redis list key holding a match's history.
func matchActionKey(matchID uuid.UUID) string {
	return "match:" + matchID.String() + ":actions"
}

// PublishMatchAction appends one action record to the match's history list
// and refreshes its TTL.
func PublishMatchAction(ctx context.Context, rec MatchActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	key := matchActionKey(rec.MatchID)
	if err := Rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	if err := Rdb.Expire(ctx, key, matchActionTTL).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// MatchActions returns the recorded history of a match in order.
func MatchActions(ctx context.Context, matchID uuid.UUID) ([]MatchActionRecord, error) {
	if Rdb == nil {
		return nil, nil
	}
	key := matchActionKey(matchID)
	raw, err := Rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	records := make([]MatchActionRecord, 0, len(raw))
	for i, item := range raw {
		var rec MatchActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal action %d of %s: %w", i, key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
