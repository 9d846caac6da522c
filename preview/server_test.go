package preview_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/camera/mock"
	"github.com/dialup-inc/camkit/preview"
)

var quiet = log.New(io.Discard, "", 0)

func startCamera(t *testing.T) (*mock.Driver, *camera.Camera, uintptr) {
	t.Helper()

	drv := mock.New(1)
	c, err := camera.New(drv, camera.DeviceRear, camera.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.StartPreview(); err != nil {
		t.Fatal(err)
	}
	return drv, c, drv.Handle(camera.DeviceRear)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamsFrames(t *testing.T) {
	drv, c, h := startCamera(t)
	s := preview.NewServer(c, preview.Options{MaxWidth: 32, Logger: quiet})
	srv := httptest.NewServer(s)
	defer srv.Close()

	if n := drv.Calls("SetMediaPacketPreviewCallback"); n != 0 {
		t.Fatalf("registered %d times before any client", n)
	}

	conn := dial(t, srv)
	waitFor(t, "client", func() bool { return s.ClientCount() == 1 })

	if !drv.EmitPreviewFrame(h) {
		t.Fatal("no preview callback registered")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if typ != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", typ)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 32 {
		t.Errorf("frame width = %d, want 32", got)
	}

	conn.Close()
	waitFor(t, "unregistration", func() bool {
		return drv.Calls("UnsetMediaPacketPreviewCallback") == 1
	})
	if s.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after disconnect", s.ClientCount())
	}
}

func TestRegistersOncePerClientGroup(t *testing.T) {
	drv, c, _ := startCamera(t)
	s := preview.NewServer(c, preview.Options{Logger: quiet})
	srv := httptest.NewServer(s)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, "clients", func() bool { return s.ClientCount() == 2 })

	if n := drv.Calls("SetMediaPacketPreviewCallback"); n != 1 {
		t.Fatalf("registered %d times, want 1", n)
	}

	a.Close()
	waitFor(t, "first disconnect", func() bool { return s.ClientCount() == 1 })
	if n := drv.Calls("UnsetMediaPacketPreviewCallback"); n != 0 {
		t.Fatalf("unregistered with a client left")
	}

	b.Close()
	waitFor(t, "unregistration", func() bool {
		return drv.Calls("UnsetMediaPacketPreviewCallback") == 1
	})

	// A new client registers again.
	dial(t, srv)
	waitFor(t, "re-registration", func() bool {
		return drv.Calls("SetMediaPacketPreviewCallback") == 2
	})
}

func TestPreviewUnavailable(t *testing.T) {
	drv := mock.New(1)
	c, err := camera.New(drv, camera.DeviceRear, camera.WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	s := preview.NewServer(c, preview.Options{Logger: quiet})
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Fatalf("read error = %v, want internal server close", err)
	}
	if s.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d", s.ClientCount())
	}
}

func TestState(t *testing.T) {
	_, c, _ := startCamera(t)
	srv := httptest.NewServer(preview.NewServer(c, preview.Options{Logger: quiet}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got struct {
		State   string `json:"state"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.State != "preview" || got.Clients != 0 {
		t.Errorf("state = %+v", got)
	}
}

func TestCapture(t *testing.T) {
	_, c, _ := startCamera(t)

	fail := false
	s := preview.NewServer(c, preview.Options{
		Logger: quiet,
		Capture: func() (string, error) {
			if fail {
				return "", errors.New("busy")
			}
			return "shot.jpg", nil
		},
	})
	srv := httptest.NewServer(s)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/capture", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || got["path"] != "shot.jpg" {
		t.Errorf("POST /capture = %d %v", resp.StatusCode, got)
	}

	fail = true
	resp, err = http.Post(srv.URL+"/capture", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("failing capture status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/capture")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /capture status = %d", resp.StatusCode)
	}
}

func TestCaptureDisabled(t *testing.T) {
	_, c, _ := startCamera(t)
	srv := httptest.NewServer(preview.NewServer(c, preview.Options{Logger: quiet}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/capture", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
