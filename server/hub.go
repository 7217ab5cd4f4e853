package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tracktitans/citysim/simulation"
)

// Request is a single JSON-RPC-ish message sent over the websocket by a
// connected client: an object/action pair plus opaque params.
type Request struct {
	ID     string          `json:"id"`
	Object string          `json:"object"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request with either a payload or an error.
type Response struct {
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// RawJSON lets a caller hand NewResponse an already-marshaled value without
// double-encoding it.
type RawJSON = json.RawMessage

// NewResponse builds a success Response carrying data.
func NewResponse(id string, data json.RawMessage) Response {
	return Response{ID: id, Data: data}
}

// NewOkResponse builds a success Response carrying a short status string.
func NewOkResponse(id string, msg string) Response {
	data, _ := json.Marshal(map[string]string{"status": msg})
	return Response{ID: id, Data: data}
}

// NewErrorResponse builds a failure Response.
func NewErrorResponse(id string, err error) Response {
	return Response{ID: id, Error: err.Error()}
}

// hubObject is anything the Hub can route a Request to by its Object field.
type hubObject interface {
	dispatch(h *Hub, req Request, conn *connection)
}

// connection wraps one client's websocket, with a push channel so dispatch
// handlers (which may run on the hub's own goroutine) never write directly
// to the socket.
type connection struct {
	ws       *websocket.Conn
	pushChan chan Response
	hub      *Hub
}

func (c *connection) writePump() {
	for resp := range c.pushChan {
		if err := c.ws.WriteJSON(resp); err != nil {
			logger.Debug("write to client failed", "err", err)
			return
		}
	}
}

func (c *connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()
	for {
		var req Request
		if err := c.ws.ReadJSON(&req); err != nil {
			return
		}
		obj, ok := c.hub.objects[req.Object]
		if !ok {
			c.pushChan <- NewErrorResponse(req.ID, errUnknownObject(req.Object))
			continue
		}
		obj.dispatch(c.hub, req, c)
	}
}

func errUnknownObject(name string) error {
	return &unknownObjectError{name}
}

type unknownObjectError struct{ name string }

func (e *unknownObjectError) Error() string { return "unknown object: " + e.name }

// Hub owns the running Sim, every connected client, and the set of
// hubObjects Requests are routed to by name — the observation-shell
// counterpart to the teacher's package-level hub. Unlike the teacher, which
// wraps a single global *simulation.Simulation, Hub wraps this engine's
// *simulation.Sim and ticks it itself on a timer rather than relying on the
// Sim's own goroutine, since Sim.Step here is synchronous and driven by an
// explicit Duration rather than a free-running clock.
type Hub struct {
	mu      sync.RWMutex
	sim     *simulation.Sim
	cfg     Config
	objects map[string]hubObject

	clients    map[*connection]bool
	register   chan *connection
	unregister chan *connection
	broadcast  chan []byte

	running bool
	stop    chan struct{}

	initialSnapshot []byte
	audit           *auditLog
}

// loadSim restores a save-state blob onto the same Map an existing Sim was
// built from, used by simulationObject's "restart" action.
func loadSim(data []byte, existing *simulation.Sim) (*simulation.Sim, error) {
	return simulation.Load(data, existing.Map())
}

// NewHub builds a Hub around sim, wired with the standard object set.
func NewHub(sim *simulation.Sim, cfg Config) *Hub {
	h := &Hub{
		sim:        sim,
		cfg:        cfg,
		objects:    make(map[string]hubObject),
		clients:    make(map[*connection]bool),
		register:   make(chan *connection),
		unregister: make(chan *connection),
		broadcast:  make(chan []byte, 16),
		audit:      newAuditLog(256),
	}
	h.objects["simulation"] = &simulationObject{}
	h.objects["suggestions"] = &suggestionsObject{}
	h.objects["audit"] = &auditObject{}
	if snap, err := sim.Save(); err == nil {
		h.initialSnapshot = snap
	}
	return h
}

// Sim returns the Hub's wrapped simulation, guarded by its RWMutex.
func (h *Hub) Sim() *simulation.Sim {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sim
}

// Start begins ticking the simulation on cfg.TickInterval; idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.stop = make(chan struct{})
	go h.tickLoop(h.stop)
}

// Pause stops the ticking loop; idempotent.
func (h *Hub) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.stop)
}

// IsStarted reports whether the tick loop is currently running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			h.sim.Step(h.cfg.TickDuration)
			h.sampleMetrics()
			snapshot := h.drawSnapshotLocked()
			h.mu.Unlock()
			select {
			case h.broadcast <- snapshot:
			default:
				logger.Debug("broadcast channel full, dropping draw snapshot")
			}
		}
	}
}

type drawSnapshot struct {
	Now       int64 `json:"now_ns"`
	CarCount  int   `json:"car_count"`
	PedCount  int   `json:"ped_count"`
}

func (h *Hub) drawSnapshotLocked() []byte {
	data, _ := json.Marshal(drawSnapshot{
		Now:      int64(h.sim.Now().Sub(simulation.TimeZero)),
		CarCount: h.sim.CarCount(),
		PedCount: h.sim.PedCount(),
	})
	return data
}

// run is the Hub's own goroutine: it owns client (de)registration and fans
// broadcast messages out to every connected client's push channel, mirroring
// the standard gorilla/websocket hub pattern.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.pushChan)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.pushChan <- Response{ID: "push", Data: msg}:
				default:
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an incoming HTTP request to a websocket connection and
// registers it with the Hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "err", err)
		return
	}
	c := &connection{ws: ws, pushChan: make(chan Response, 16), hub: h}
	h.register <- c
	go c.writePump()
	c.readPump()
}
