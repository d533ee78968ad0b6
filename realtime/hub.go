// Package realtime pushes order events to restaurant dashboards over
// websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"food-ordering-api/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout = 5 * time.Second
	readLimit    = 512
)

// subscriber serialises writes; a websocket connection allows only one
// concurrent writer.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub keeps the open dashboard connections of each restaurant
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub accepts upgrades from the given origins; an empty list accepts any
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Serve upgrades the request and holds the connection open until the
// client goes away. It blocks for the lifetime of the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, restaurantID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sub := &subscriber{conn: conn}
	h.add(restaurantID, sub)
	defer h.remove(restaurantID, sub)

	// dashboards only listen; reading is how a close is noticed
	conn.SetReadLimit(readLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Publish sends ev to every dashboard of the restaurant. Connections that
// fail to take the write are dropped.
func (h *Hub) Publish(restaurantID string, ev models.OrderEvent) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[restaurantID]))
	for s := range h.subs[restaurantID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("failed to encode order event")
		return
	}
	for _, s := range targets {
		if err := s.write(data); err != nil {
			logrus.WithError(err).WithField("restaurant_id", restaurantID).Debug("dropping dashboard connection")
			h.remove(restaurantID, s)
		}
	}
}

// Subscribers returns the number of open connections for a restaurant
func (h *Hub) Subscribers(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[restaurantID])
}

func (h *Hub) add(restaurantID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[restaurantID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[restaurantID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) remove(restaurantID string, s *subscriber) {
	h.mu.Lock()
	set := h.subs[restaurantID]
	_, present := set[s]
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, restaurantID)
	}
	h.mu.Unlock()

	if present {
		_ = s.conn.Close()
	}
}
