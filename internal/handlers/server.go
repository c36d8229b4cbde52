// internal/handlers/server.go
package handlers

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jeufa/fadu/internal/cache"
	"github.com/jeufa/fadu/internal/config"
	"github.com/jeufa/fadu/internal/database"
	"github.com/jeufa/fadu/internal/engine"
	"github.com/jeufa/fadu/internal/game"
	"github.com/jeufa/fadu/internal/matchmaking"
	"github.com/jeufa/fadu/internal/models"
	"github.com/jeufa/fadu/internal/ws"
)

// GameServer owns the registry, the matchmaking queue and the live sessions,
// and wires them together: a successful pairing builds a session whose
// broadcasts flow back out through the registry.
type GameServer struct {
	Logger   *log.Logger
	Cfg      config.Config
	Registry *ws.Registry
	Queue    *matchmaking.Queue
	Sessions *game.SessionStore
}

func NewGameServer(cfg config.Config, logger *log.Logger) *GameServer {
	s := &GameServer{
		Logger:   logger,
		Cfg:      cfg,
		Registry: ws.NewRegistry(logger),
		Sessions: game.NewSessionStore(),
	}

	s.Queue = matchmaking.NewQueue(matchmaking.Options{
		RequireAccept: cfg.MatchRequireAccept,
		InviteTTL:     cfg.InviteTTL,
	}, logger)
	s.Queue.CreateSession = s.createSession
	s.Queue.InSession = func(playerID uuid.UUID) bool {
		sess, ok := s.Sessions.GetByPlayer(playerID)
		return ok && !sess.Completed()
	}
	s.Queue.Notify = func(e matchmaking.Entry, env ws.Envelope) {
		// Matchmaking events prefer the seeker's matchmaking channel but fall
		// back to the player channel after a reconnect.
		if e.Conn != nil && s.Registry.SendTo(e.Conn, env) {
			return
		}
		s.Registry.SendToPlayer(e.PlayerID, env)
	}
	return s
}

func (s *GameServer) settings() game.Settings {
	return game.Settings{
		InitialPFH:    s.Cfg.InitialPFH,
		SacrificeCost: s.Cfg.SacrificeCost,
		Rules: engine.VictoryRules{
			WinningPFH:           s.Cfg.WinningPFH,
			MaxTurns:             s.Cfg.MaxTurns,
			MaxConsecutiveLosses: s.Cfg.MaxConsecutiveLosses,
		},
	}
}

// createSession is the matchmaking pairing step: build the in-memory session,
// wire its broadcasts, and kick off best-effort persistence. It runs under
// the queue lock, so the players come straight from the entries; display
// names were resolved at channel connect.
func (s *GameServer) createSession(a, b matchmaking.Entry) (uuid.UUID, error) {
	return s.startSession(entryPlayer(a), entryPlayer(b))
}

func entryPlayer(e matchmaking.Entry) models.Player {
	name := e.DisplayName
	if name == "" {
		name = "Guest"
	}
	return models.Player{ID: e.PlayerID, DisplayName: name}
}

// startSession instantiates and registers a session for two resolved players.
func (s *GameServer) startSession(pa, pb models.Player) (uuid.UUID, error) {
	id := uuid.New()
	deck := engine.NewDeck(rand.New(rand.NewSource(time.Now().UnixNano())))
	sess := game.NewSession(id, pa, pb, deck, s.settings(), s.Logger)

	sess.BroadcastFn = func(env ws.Envelope) {
		s.Registry.BroadcastToGame(id, env)
	}
	sess.BroadcastToPlayerFn = func(playerID uuid.UUID, env ws.Envelope) {
		s.Registry.SendToPlayer(playerID, env)
	}
	sess.RecordFn = s.recordTurn

	s.Sessions.Add(sess)

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.CreateSession(ctx, id, pa.ID, pb.ID); err != nil {
				s.Logger.Errorf("failed to persist session %s: %v", id, err)
			}
		}()
	}
	return id, nil
}

// resolvePlayer looks up a player's display name, falling back to a guest
// identity when the store is unavailable.
func (s *GameServer) resolvePlayer(playerID uuid.UUID) models.Player {
	if database.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if p, err := database.GetPlayer(ctx, playerID); err == nil {
			return *p
		}
	}
	return models.Player{ID: playerID, DisplayName: "Guest"}
}

// recordTurn hands a finished turn to the historian via Redis; if Redis is
// down the record goes straight to the database. Either way it is best
// effort and never blocks gameplay.
func (s *GameServer) recordTurn(rec models.TurnRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if cache.Rdb != nil {
			if err := cache.PublishTurnRecord(ctx, rec); err == nil {
				return
			} else {
				s.Logger.Warnf("redis publish for session %s turn %d failed: %v", rec.SessionID, rec.TurnNumber, err)
			}
		}
		if database.DB != nil {
			if err := database.InsertTurnRecord(ctx, rec); err != nil {
				s.Logger.Errorf("failed to persist turn record for session %s: %v", rec.SessionID, err)
			}
		}
	}()
}

// FinalizeSession persists a completed session's outcome and releases the
// players for future matchmaking.
func (s *GameServer) FinalizeSession(sess *game.Session) {
	st := sess.PublicState()
	if !st.Completed {
		return
	}

	var winner *uuid.UUID
	if st.Winner != nil {
		if w, err := uuid.Parse(*st.Winner); err == nil {
			winner = &w
		}
	}
	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.CompleteSession(ctx, sess.ID, winner); err != nil {
				s.Logger.Errorf("failed to finalize session %s: %v", sess.ID, err)
			}
		}()
	}
	s.Sessions.Delete(sess.ID)
}
