// Package notify pushes gallery update datagrams to interested clients
// over UDP. Clients register with a small JSON message; producers (the
// scraper, mostly) publish updates to the same socket and the server fans
// them out to every registered client.
package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType      = "register"
	PublishMessageType       = "publish"
	GalleryUpdateMessageType = "gallery_update"
)

type RegisterMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// PublishMessage asks the server to fan a gallery update out to all
// registered clients.
type PublishMessage struct {
	Type  string `json:"type"`
	GID   int64  `json:"gid"`
	Token string `json:"token"`
	Pages int    `json:"pages,omitempty"`
}

// GalleryUpdateMessage tells subscribed clients that a gallery record
// gained new data, typically a known page count after a scrape.
type GalleryUpdateMessage struct {
	Type  string `json:"type"`
	GID   int64  `json:"gid"`
	Token string `json:"token"`
	Pages int    `json:"pages,omitempty"`
}

// inboundMessage is the superset of fields a datagram may carry; Type
// decides how the rest is interpreted.
type inboundMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	GID    int64  `json:"gid"`
	Token  string `json:"token"`
	Pages  int    `json:"pages"`
}

type Client struct {
	UserID string
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(userID string, addr *net.UDPAddr) {
	if userID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("[notify] UDP server listening on %s", conn.LocalAddr())

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return err
		}
		msg, err := parseInbound(buffer[:n])
		if err != nil {
			s.logger.Printf("[notify] invalid UDP message from %s: %v", addr, err)
			continue
		}

		switch msg.Type {
		case RegisterMessageType:
			if msg.UserID == "" {
				s.logger.Printf("[notify] register without user_id from %s", addr)
				continue
			}
			s.registry.Register(msg.UserID, addr)
			s.logger.Printf("[notify] registered UDP client %s (%s)", msg.UserID, addr)
		case PublishMessageType:
			if msg.GID <= 0 || msg.Token == "" {
				s.logger.Printf("[notify] publish without gallery identity from %s", addr)
				continue
			}
			s.BroadcastGalleryUpdate(msg.GID, msg.Token, msg.Pages)
		}
	}
}

// LocalAddr reports the bound UDP address, nil until Run has opened the
// socket.
func (s *Server) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// BroadcastGalleryUpdate pushes a gallery_update message to every
// registered client.
func (s *Server) BroadcastGalleryUpdate(gid int64, token string, pages int) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.logger.Printf("[notify] UDP server not running")
		return
	}
	payload, err := json.Marshal(GalleryUpdateMessage{
		Type:  GalleryUpdateMessageType,
		GID:   gid,
		Token: token,
		Pages: pages,
	})
	if err != nil {
		s.logger.Printf("[notify] failed to marshal broadcast: %v", err)
		return
	}

	for _, client := range s.registry.Snapshot() {
		s.sendWithRetry(conn, client, payload)
	}
}

// Publish sends a publish datagram to the notify server at addr, which
// fans the update out to its registered clients. Used by producers that
// run in a different process than the server.
func Publish(addr string, gid int64, token string, pages int) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	payload, err := json.Marshal(PublishMessage{
		Type:  PublishMessageType,
		GID:   gid,
		Token: token,
		Pages: pages,
	})
	if err != nil {
		return err
	}
	_, err = conn.Write(payload)
	return err
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.logger.Printf("[notify] failed to notify user %s at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseInbound(data []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.Type == "" {
		return msg, errors.New("missing message type")
	}
	return msg, nil
}
