// Package httpapi assembles the server's HTTP surface: the two
// WebSocket upgrade endpoints that carry the game protocol plus the
// collaborator endpoints recovered from original_source/backend/src/
// server.rs and docs.rs (health, stats, docs, the generated API spec,
// and the embedded static client). Grounded on the teacher's inline
// http.HandleFunc("/ws", ...) wiring in main.go, generalized to two
// role-gated endpoints and split into its own package so cmd/
// stays a thin bootstrap.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"snakegrid/internal/bus"
	"snakegrid/internal/config"
	"snakegrid/internal/engine"
	"snakegrid/internal/gameloop"
	"snakegrid/internal/logging"
	"snakegrid/internal/protocol"
	"snakegrid/internal/room"
	"snakegrid/internal/session"
	"snakegrid/internal/web"
)

// Deps bundles every collaborator the HTTP surface needs to dispatch
// into the rest of the server.
type Deps struct {
	Config config.Config
	World  *engine.World
	Room   *room.Room
	Bus    *bus.Bus
	Loop   *gameloop.GameLoop
	Log    logging.Logger
	Start  time.Time
}

// NewMux builds the complete HTTP handler for the server.
func NewMux(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logging.Nop{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// Dev-mode origin policy, same as the teacher's upgrader in
		// main.go; a deployment behind a known origin set should
		// replace this with an allow-list check.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/lobby", lobbyHandler(d, upgrader))
	mux.HandleFunc("/gui", guiHandler(d, upgrader))
	mux.HandleFunc("/health", healthHandler(d))
	mux.HandleFunc("/stats", statsHandler(d))
	mux.HandleFunc("/docs", docsHandler())
	mux.HandleFunc("/swagger", docsHandler())
	mux.HandleFunc("/api-spec.json", apiSpecHandler())
	mux.Handle("/", web.Handler())

	return mux
}

func lobbyHandler(d Deps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Log.Warn("lobby upgrade failed", logging.Err(err))
			return
		}

		id := uuid.NewString()
		name := r.URL.Query().Get("player_name")
		if name == "" {
			name = "Player_" + id[:8]
		}

		if _, err := d.Room.AddPlayer(id, name); err != nil {
			data, _ := protocol.Encode(protocol.NewError(err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, data)
			_ = conn.Close()
			return
		}

		sess := session.New(id, name, session.RolePlayer, conn, d.Room, d.Bus, d.Loop, d.World, d.Config.Timing, d.Config.Transport.MaxFrameSize, d.Log)
		sess.Serve(r.Context())
	}
}

func guiHandler(d Deps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Log.Warn("gui upgrade failed", logging.Err(err))
			return
		}

		id := uuid.NewString()
		sess := session.New(id, "", session.RoleController, conn, d.Room, d.Bus, d.Loop, d.World, d.Config.Timing, d.Config.Transport.MaxFrameSize, d.Log)
		sess.Serve(r.Context())
	}
}

func healthHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"uptime_s": int(time.Since(d.Start).Seconds()),
		})
	}
}

func statsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitsSpawned, snakesEliminated := d.World.Diagnostics()
		snap := d.World.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"connected_sessions": d.Bus.SubscriberCount(),
			"room_players":       d.Room.Count(),
			"tick":               snap.Tick,
			"running":            snap.Running,
			"fruits_spawned":     fruitsSpawned,
			"snakes_eliminated":  snakesEliminated,
		})
	}
}

func docsHandler() http.HandlerFunc {
	page := web.MustGetFile("docs.html")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

// apiSpecHandler serves a machine-readable description of the message
// envelope, generated from the same structs the codec marshals so the
// document can never drift from the wire behavior.
func apiSpecHandler() http.HandlerFunc {
	spec := map[string]any{
		"client_to_server": []string{
			protocol.TypeJoinLobby, protocol.TypeSubmitMove, protocol.TypeStartGame, protocol.TypePing,
		},
		"server_to_client": []string{
			protocol.TypeLobbyJoined, protocol.TypeLobbyState, protocol.TypeGameStarted,
			protocol.TypeGameUpdate, protocol.TypeMoveRequest, protocol.TypeGameEnded,
			protocol.TypeError, protocol.TypePong,
		},
		"schemas": map[string]any{
			"lobby_joined": protocol.NewLobbyJoined("", ""),
			"lobby_state":  protocol.NewLobbyState(nil),
			"game_started": protocol.NewGameStarted(protocol.GameState{}, ""),
			"game_update":  protocol.NewGameUpdate(protocol.GameState{}),
			"move_request": protocol.NewMoveRequest(nil, 0),
			"game_ended":   protocol.NewGameEnded(nil, protocol.GameState{}),
			"error":        protocol.NewError(""),
			"pong":         protocol.NewPong(),
		},
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, "failed to generate api spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
