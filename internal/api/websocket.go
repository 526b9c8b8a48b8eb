package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed.
	MaxWSConnectionsTotal = 100

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP.
	MaxWSConnectionsPerIP = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its identity and source IP.
type wsClient struct {
	id   string
	conn *websocket.Conn
	ip   string
}

// inputMessage is the wire format clients send. The keyboard and pointer
// variants write into the engine's intent buffer; commands invoke engine
// operations directly.
type inputMessage struct {
	Type string `json:"type"` // "keys", "pointer", "command", "difficulty"

	Up   bool `json:"up,omitempty"`
	Down bool `json:"down,omitempty"`

	Active bool    `json:"active,omitempty"`
	Y      float64 `json:"y,omitempty"`

	Name string `json:"name,omitempty"` // "restart" or "pause"
	Tier string `json:"tier,omitempty"`
}

// WebSocketHub manages WebSocket connections: it fans match state out to all
// clients and funnels their input intents into the engine's IntentBuffer.
// Input handlers only set flags; all physics stays inside the tick.
//
// The hub also enforces the connection budget itself: total connections via
// the clients map, per-IP connections via ipSlots. A slot is reserved before
// the upgrade and released when the client unregisters.
type WebSocketHub struct {
	engine EngineInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	ipSlots  map[string]int // guarded by mu
	maxPerIP int

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a hub with per-IP connection limiting.
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		ipSlots:    make(map[string]int),
		maxPerIP:   MaxWSConnectionsPerIP,
		stopChan:   make(chan struct{}),
	}
}

// reserveSlot claims a per-IP connection slot, failing at the cap.
func (h *WebSocketHub) reserveSlot(ip string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ipSlots[ip] >= h.maxPerIP {
		return false
	}
	h.ipSlots[ip]++
	return true
}

// releaseSlot frees a per-IP connection slot. Caller must hold h.mu.
func (h *WebSocketHub) releaseSlot(ip string) {
	h.ipSlots[ip]--
	if h.ipSlots[ip] <= 0 {
		delete(h.ipSlots, ip)
	}
}

// Run is the hub's connection bookkeeping loop. It returns after Stop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("🎮 Controller %s connected from %s (%d total)", client.id[:8], client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.releaseSlot(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			// Without any controller attached, clear intents so a stuck key
			// doesn't keep the paddle drifting.
			if count == 0 {
				h.engine.Intents().Reset()
			}

			log.Printf("🎮 Controller disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			var dead []*websocket.Conn
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range dead {
				h.unregisterConn(conn)
			}
			IncrementWSMessages()
		}
	}
}

// Stop shuts the hub down: the bookkeeping and broadcast loops exit and all
// client connections are closed. Safe to call more than once.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// closeAll drops every client on shutdown.
func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.ipSlots = make(map[string]int)
	UpdateWSConnections(0)
}

func (h *WebSocketHub) unregisterConn(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	default:
	}
}

// Broadcast queues a message for all connected clients, dropping it under
// backpressure rather than blocking.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes match state to all clients at 10 Hz until Stop.
// Rendering happens server-side; this feed exists for score displays and
// debugging clients that want structured state instead of pixels.
func (h *WebSocketHub) StartBroadcastLoop() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
				if h.ClientCount() == 0 {
					continue
				}
				h.Broadcast("match:state", h.engine.Snapshot())
			}
		}
	}()
}

// HandleWebSocket upgrades a connection and runs its read pump.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.reserveSlot(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.mu.Lock()
		h.releaseSlot(ip)
		h.mu.Unlock()
		return
	}

	client := &wsClient{id: uuid.NewString(), conn: conn, ip: ip}
	h.register <- client

	go h.readPump(client)
}

// readPump consumes input messages from one client until it disconnects.
func (h *WebSocketHub) readPump(client *wsClient) {
	defer func() {
		// Block until the hub takes the unregister, unless it is stopping
		// and will never receive again.
		select {
		case h.unregister <- client.conn:
		case <-h.stopChan:
		}
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inputMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		h.dispatch(msg)
	}
}

// dispatch applies one input message. Intent writes are plain flag updates;
// the tick picks them up on its next pass.
func (h *WebSocketHub) dispatch(msg inputMessage) {
	switch msg.Type {
	case "keys":
		h.engine.Intents().SetKeys(msg.Up, msg.Down)
	case "pointer":
		h.engine.Intents().SetPointer(msg.Active, msg.Y)
	case "command":
		switch msg.Name {
		case "restart":
			h.engine.RestartMatch()
		case "pause":
			h.engine.TogglePause()
		}
	case "difficulty":
		h.engine.SetDifficulty(msg.Tier)
	}
}
