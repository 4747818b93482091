// Package main is the entry point for the stacksort inventory sorting server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/lootkeep/stacksort/internal/domain/itemtree"
	"github.com/lootkeep/stacksort/internal/engine"
	"github.com/lootkeep/stacksort/internal/events"
	"github.com/lootkeep/stacksort/internal/infra/registry"
	"github.com/lootkeep/stacksort/internal/infra/storage"
	"github.com/lootkeep/stacksort/internal/infra/treeload"
	"github.com/lootkeep/stacksort/internal/network"
	"github.com/lootkeep/stacksort/internal/platform/config"
	"github.com/lootkeep/stacksort/internal/platform/logger"
	"github.com/lootkeep/stacksort/internal/platform/metrics"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.Event) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storedEvent := storage.StoredEvent{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Source:    event.Source,
		Payload:   payloadMap,
	}
	return a.repo.Append(context.Background(), storedEvent)
}

func main() {
	log.Println("[SORT-SERVER] Initializing stacksort authoritative server...")

	cfg, err := config.Load(os.Getenv("STACKSORT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()

	appLogger.Infof("Initializing SQLite database %q...", cfg.DBPath)
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Errorf("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Item Tree...")
	tree := itemtree.NewTree(appLogger)

	appLogger.Infof("Loading hierarchy definition %q...", cfg.TreePath)
	stats, err := treeload.LoadFile(cfg.TreePath, tree)
	if err != nil {
		appLogger.Errorf("Failed to load hierarchy: %v", err)
		os.Exit(1)
	}
	eventLog.Record(events.EventTypeTreeLoaded, "LOADER", events.TreeLoadedPayload{
		Source:     cfg.TreePath,
		Categories: stats.Categories,
		Items:      stats.Items,
		Aliases:    stats.Aliases,
	})
	appLogger.Infof("Hierarchy loaded: %d categories, %d items, %d aliases",
		stats.Categories, stats.Items, stats.Aliases)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Replaying discovered-identity catalog...")
	identityRepo := storage.NewSQLiteIdentityRepository(db)
	reg := registry.NewRegistry(identityRepo, tree, eventLog, appLogger)
	if err := reg.Replay(ctx); err != nil {
		appLogger.Errorf("Failed to replay identity catalog: %v", err)
		os.Exit(1)
	}

	appLogger.Info("Bootstrapping Sorting Engine...")
	sortEngine := engine.NewEngine(tree, eventLog, appLogger)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(sortEngine, appLogger, cfg.BroadcastBuffer)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Setup API Routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, cfg.ClientSendBuffer, appLogger)
	})

	http.HandleFunc("/api/registry/discover", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		type requestParams struct {
			Key     string `json:"key"`
			TypeID  int    `json:"type_id"`
			Variant int    `json:"variant"`
		}
		var req requestParams
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if req.Key == "" {
			http.Error(w, "Missing registry key", http.StatusBadRequest)
			return
		}

		if err := reg.Discover(r.Context(), req.Key, req.TypeID, req.Variant); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "Identity cataloged"})
	})

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"categories": tree.RootCategory() != nil,
			"events":     eventLog.Len(),
		})
	})

	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Printf("[SORT-SERVER] HTTP API & WS Server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[SORT-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[SORT-SERVER] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Sorting clients connect from anywhere on the LAN
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, sendBuffer int, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn, sendBuffer)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
