// Package store persists player profiles and ratings in Postgres. The
// server runs fine without it; a nil *PlayerStore simply disables rated
// play bookkeeping.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wizardchess/magic-chess-backend/internal/rating"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
    id     TEXT PRIMARY KEY,
    rating INTEGER NOT NULL,
    games  INTEGER NOT NULL DEFAULT 0,
    wins   INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    draws  INTEGER NOT NULL DEFAULT 0
)`

type PlayerProfile struct {
	ID     string `json:"id"`
	Rating int    `json:"rating"`
	Games  int    `json:"games"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
}

type PlayerStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens a connection pool and verifies it with a ping.
func NewDB(ctx context.Context, url string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", pool.Stat().TotalConns()),
	)
	return pool, nil
}

func NewPlayerStore(pool *pgxpool.Pool, logger *zap.Logger) *PlayerStore {
	return &PlayerStore{pool: pool, logger: logger}
}

// EnsureSchema creates the players table if missing.
func (s *PlayerStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetOrCreate returns the profile for playerID, creating it at the default
// rating on first sight.
func (s *PlayerStore) GetOrCreate(ctx context.Context, playerID string) (PlayerProfile, error) {
	var p PlayerProfile
	err := s.pool.QueryRow(ctx, `
		INSERT INTO players (id, rating) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, rating, games, wins, losses, draws`,
		playerID, rating.Default,
	).Scan(&p.ID, &p.Rating, &p.Games, &p.Wins, &p.Losses, &p.Draws)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("get or create player %s: %w", playerID, err)
	}
	return p, nil
}

// ApplyResult settles a finished rated game in a single transaction.
func (s *PlayerStore) ApplyResult(ctx context.Context, winnerID, loserID string, draw bool) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var winnerRating, loserRating int
	if err := tx.QueryRow(ctx,
		`SELECT rating FROM players WHERE id = $1 FOR UPDATE`, winnerID,
	).Scan(&winnerRating); err != nil {
		return fmt.Errorf("lock winner %s: %w", winnerID, err)
	}
	if err := tx.QueryRow(ctx,
		`SELECT rating FROM players WHERE id = $1 FOR UPDATE`, loserID,
	).Scan(&loserRating); err != nil {
		return fmt.Errorf("lock loser %s: %w", loserID, err)
	}

	newWinner, newLoser := rating.Update(winnerRating, loserRating, draw)

	winCol, lossCol := "wins", "losses"
	if draw {
		winCol, lossCol = "draws", "draws"
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE players SET rating = $1, games = games + 1, %s = %s + 1 WHERE id = $2`, winCol, winCol),
		newWinner, winnerID,
	); err != nil {
		return fmt.Errorf("update winner %s: %w", winnerID, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE players SET rating = $1, games = games + 1, %s = %s + 1 WHERE id = $2`, lossCol, lossCol),
		newLoser, loserID,
	); err != nil {
		return fmt.Errorf("update loser %s: %w", loserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("ratings settled",
		zap.String("winner", winnerID),
		zap.Int("winner_rating", newWinner),
		zap.String("loser", loserID),
		zap.Int("loser_rating", newLoser),
		zap.Bool("draw", draw),
	)
	return nil
}
