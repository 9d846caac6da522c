// Package preview streams a camera's decoded preview to browsers over a
// websocket.
package preview

import (
	"encoding/json"
	"image"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfnt/resize"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/yuv"
)

// Camera is the part of *camera.Camera the server needs.
type Camera interface {
	State() camera.State
	OnDecodedPreview(fn func(camera.DecodedPreviewEvent)) (*camera.Subscription, error)
}

type Options struct {
	// MaxWidth downscales wider frames. Zero keeps the camera size.
	MaxWidth int
	// FrameRate caps the frames sent per second. Zero sends every frame.
	FrameRate int
	// Quality is the JPEG quality, 1..100.
	Quality int
	// Capture serves POST /capture when set and returns where the image
	// was stored.
	Capture func() (string, error)
	Logger  *log.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			return
		}
	}
}

// Server fans preview frames out to websocket clients. The camera's
// decoded preview listener is only attached while at least one client is
// connected.
type Server struct {
	cam      Camera
	opts     Options
	logger   *log.Logger
	interval time.Duration
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
	sub     *camera.Subscription
	last    time.Time
}

func NewServer(cam Camera, opts Options) *Server {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[preview] ", log.LstdFlags)
	}

	s := &Server{
		cam:     cam,
		opts:    opts,
		logger:  logger,
		clients: make(map[*client]bool),
	}
	if opts.FrameRate > 0 {
		s.interval = time.Second / time.Duration(opts.FrameRate)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.HandleWS(w, r)
	case "/state":
		s.HandleState(w, r)
	case "/capture":
		s.HandleCapture(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[error] websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 4)}
	if err := s.addClient(c); err != nil {
		s.logger.Printf("[error] preview unavailable: %v", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		return
	}
	go c.writePump()

	// Clients never send anything; reading surfaces the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.removeClient(c)
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		State   camera.State `json:"state"`
		Clients int          `json:"clients"`
	}{s.cam.State(), s.ClientCount()})
}

func (s *Server) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if s.opts.Capture == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path, err := s.opts.Capture()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"path": path})
}

func (s *Server) addClient(c *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) == 0 {
		sub, err := s.cam.OnDecodedPreview(s.onFrame)
		if err != nil {
			return err
		}
		s.sub = sub
	}
	s.clients[c] = true
	return nil
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(c)
}

func (s *Server) removeLocked(c *client) {
	if !s.clients[c] {
		return
	}
	delete(s.clients, c)
	close(c.send)

	if len(s.clients) == 0 {
		s.sub.Remove()
		s.sub = nil
	}
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		s.removeClient(c)
	}
}

func (s *Server) onFrame(e camera.DecodedPreviewEvent) {
	s.mu.Lock()
	now := time.Now()
	if len(s.clients) == 0 || (s.interval > 0 && now.Sub(s.last) < s.interval) {
		s.mu.Unlock()
		return
	}
	s.last = now
	s.mu.Unlock()

	data, err := yuv.ToJPEG(s.fit(e.Image), s.opts.Quality)
	if err != nil {
		s.logger.Printf("[error] encode frame: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.logger.Printf("preview client too slow, disconnecting")
			s.removeLocked(c)
		}
	}
}

func (s *Server) fit(img image.Image) image.Image {
	if s.opts.MaxWidth <= 0 || img.Bounds().Dx() <= s.opts.MaxWidth {
		return img
	}
	return resize.Resize(uint(s.opts.MaxWidth), 0, img, resize.Bilinear)
}
