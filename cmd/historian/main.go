// cmd/historian/main.go is an asynchronous historian service that pops turn
// records from a Redis queue and persists them to PostgreSQL, keeping durable
// writes off the game server's hot path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/jeufa/fadu/internal/database"
	"github.com/jeufa/fadu/internal/models"
)

// HistorianService drains the Redis turn queue into the database in batches
// and marks sessions abandoned after a period of inactivity.
type HistorianService struct {
	redisClient  *redis.Client
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[uuid.UUID]time.Time, last record seen per session

	batchMu  sync.Mutex
	batch    []models.TurnRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs the service from environment variables.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("SESSION_INACTIVITY_TIMEOUT_SEC", 600)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]models.TurnRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects the database and starts the drain and inactivity loops.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("fadu-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("fadu-historian shutting down.")
}

// readRedisLoop BLPops turn records off the queue, accumulating them into
// the current batch and flushing on the timer.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORIAN_QUEUE_NAME", "fadu_turns")

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// A short BLPop timeout keeps context cancellation responsive.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var rec models.TurnRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				log.Printf("invalid turn record: %v\n", err)
				continue
			}

			hs.lastActivity.Store(rec.SessionID, time.Now())
			hs.appendToBatch(rec)
		}
	}
}

func (hs *HistorianService) appendToBatch(rec models.TurnRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.batchSize {
		hs.flushBatchLocked()
	}
}

func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushBatchLocked()
}

// flushBatchLocked writes the pending records in one transaction.
func (hs *HistorianService) flushBatchLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]models.TurnRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := database.InsertTurnRecordTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert turn record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d turn records to DB.\n", len(batchCopy))
	}
}

// inactivityLoop marks sessions abandoned once no turn record has arrived
// for the configured threshold.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val interface{}) bool {
				sessionID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markSessionAbandoned(sessionID)
					hs.lastActivity.Delete(sessionID)
				}
				return true
			})
		}
	}
}

func (hs *HistorianService) markSessionAbandoned(sessionID uuid.UUID) {
	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE sessions
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, sessionID)
		return e
	})
	if err != nil {
		log.Printf("failed to mark session %v abandoned: %v", sessionID, err)
	} else {
		log.Printf("Marked session %v as 'abandoned' due to inactivity.", sessionID)
	}
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt parses an environment variable as an integer, else a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
