package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jackson-nestelroad/battler-go/internal/data"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// liveUpdate is one frame pushed to a connected spectator: the new log
// lines produced since the last frame plus the current turn number,
// grounded in the teacher's GameState-over-websocket demo pattern
// (cmd/web-demo/main.go).
type liveUpdate struct {
	BattleID string   `json:"battle_id"`
	Turn     int      `json:"turn"`
	Lines    []string `json:"lines"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// runLiveServer runs the same scripted demo battle as runScriptedDemo for
// each websocket client that connects to /ws, then sends that battle's
// whole log to the client as a single frame once the battle has finished;
// nothing is sent while the battle is being played.
func runLiveServer(addr string, store *data.Store, prng value.PRNG, logger *zap.Logger) {
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		b, err := runScriptedDemo(store, prng, logger)
		if err != nil {
			logger.Warn("demo battle failed", zap.Error(err))
			return
		}

		lines := b.Log().Lines()
		payload, err := json.Marshal(liveUpdate{BattleID: b.ID(), Turn: b.Field().Turn, Lines: lines})
		if err != nil {
			logger.Warn("failed to marshal live update", zap.Error(err))
			return
		}
		logger.Info("streaming battle to spectator", zap.String("battle_id", b.ID()))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("failed to write live update", zap.Error(err))
		}
	})

	logger.Info("live spectator server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("live server error", zap.Error(err))
	}
}
