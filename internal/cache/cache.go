// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. It stays nil when the cache is disabled;
// callers must check before use.
var Rdb *redis.Client

const (
	liveTablesKey  = "skat:tables:live"
	tableKeyPrefix = "skat:table:"
	tableEntryTTL  = 24 * time.Hour
)

// TableEntry is the cached registration of a live table.
type TableEntry struct {
	TableID   uuid.UUID `json:"tableId"`
	Name      string    `json:"name"`
	Private   bool      `json:"private"`
	Seated    int       `json:"seated"`
	Phase     string    `json:"phase"`
	UpdatedAt int64     `json:"updatedAt"`
}

// Connect opens the Redis client and verifies the connection.
func Connect(ctx context.Context, addr string, db int) error {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	Rdb = client
	logrus.Info("redis connected")
	return nil
}

// Close releases the Redis client.
func Close() {
	if Rdb != nil {
		_ = Rdb.Close()
		Rdb = nil
	}
}

// RegisterTable upserts the live-table entry and adds it to the index.
func RegisterTable(ctx context.Context, entry TableEntry) error {
	if Rdb == nil {
		return nil
	}
	entry.UpdatedAt = time.Now().UnixMilli()
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling table entry: %w", err)
	}
	pipe := Rdb.TxPipeline()
	pipe.Set(ctx, tableKeyPrefix+entry.TableID.String(), payload, tableEntryTTL)
	pipe.SAdd(ctx, liveTablesKey, entry.TableID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("registering table: %w", err)
	}
	return nil
}

// DropTable removes a table from the live registry.
func DropTable(ctx context.Context, tableID uuid.UUID) error {
	if Rdb == nil {
		return nil
	}
	pipe := Rdb.TxPipeline()
	pipe.Del(ctx, tableKeyPrefix+tableID.String())
	pipe.SRem(ctx, liveTablesKey, tableID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	return nil
}

// LiveTables lists the registered live tables. Stale index members whose
// entries have expired are skipped and pruned.
func LiveTables(ctx context.Context) ([]TableEntry, error) {
	if Rdb == nil {
		return nil, nil
	}
	ids, err := Rdb.SMembers(ctx, liveTablesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing live tables: %w", err)
	}
	var out []TableEntry
	for _, id := range ids {
		payload, err := Rdb.Get(ctx, tableKeyPrefix+id).Bytes()
		if err == redis.Nil {
			_ = Rdb.SRem(ctx, liveTablesKey, id).Err()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading table %s: %w", id, err)
		}
		var entry TableEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			logrus.WithField("table", id).WithError(err).Warn("corrupt table entry, pruning")
			_ = Rdb.SRem(ctx, liveTablesKey, id).Err()
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
