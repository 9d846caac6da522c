// Command loadtest opens many preview websocket clients against a camview
// server and reports how long each takes to receive its frames.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/color"
	"image/jpeg"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dialup-inc/camkit/term"
)

var (
	Green = color.RGBA{0x00, 0xFF, 0x00, 0xFF}
	Blue  = color.RGBA{0x00, 0x00, 0xFF, 0xFF}
)

func main() {
	var (
		wsURL       = flag.String("ws", "ws://127.0.0.1:8080/ws", "preview websocket url")
		concurrency = flag.Int64("p", 10, "number of simultaneous clients")
		frames      = flag.Int("frames", 30, "frames each client reads before disconnecting")
	)
	flag.Parse()

	ctx := context.Background()

	var resultsMu sync.Mutex
	var results []Result

	var testsActive int64

	run := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		// Add some jitter
		delay := rand.Int63n(int64(time.Second))
		time.Sleep(time.Duration(delay))

		res := RunTest(ctx, *wsURL, *frames)

		atomic.AddInt64(&testsActive, -1)

		resultsMu.Lock()
		results = append(results, res)
		resultsMu.Unlock()
	}

	ansiOut := term.ANSI{Writer: os.Stdout}
	title := func(s string, c color.Color) {
		ansiOut.Bold()
		ansiOut.Foreground(c)
		fmt.Println(s)
		ansiOut.ForegroundReset()
		ansiOut.Normal()
	}
	summary := func() {
		ansiOut.Clear()
		ansiOut.CursorPosition(1, 1)

		active := atomic.LoadInt64(&testsActive)

		resultsMu.Lock()
		s := summarize(results)
		resultsMu.Unlock()

		title("Running Load Test...", Green)
		fmt.Println("")

		title("Clients:", Blue)
		fmt.Println("Active    = ", active)
		fmt.Println("Target    = ", *concurrency)
		fmt.Println("Completed = ", s.Completed)
		fmt.Println("")

		if s.Completed == 0 {
			return
		}

		title("Time to last frame:", Blue)
		fmt.Println("median = ", s.Median)
		fmt.Println("95%    = ", s.P95)
		fmt.Println("")

		title("Frames:", Blue)
		fmt.Printf("fps    = %.01f\n", s.FPS)
		fmt.Println("")

		title("Errors:", Blue)
		fmt.Printf("rate = %.02f%%\n", s.ErrRate*100)
		fmt.Println("")

		for _, e := range s.TopErrs {
			if e.Err == nil {
				continue
			}
			fmt.Printf("%d  | %v\n", e.Count, e.Err)
		}
	}

	for range time.Tick(1 * time.Second) {
		active := atomic.LoadInt64(&testsActive)
		for i := active; i < *concurrency; i++ {
			atomic.AddInt64(&testsActive, 1)
			go run(ctx)
		}

		summary()
	}
}

func RunTest(ctx context.Context, wsURL string, frames int) Result {
	start := time.Now()
	n, err := readFrames(ctx, wsURL, frames)
	duration := time.Since(start)

	return Result{
		Err:      err,
		Frames:   n,
		Duration: duration,
	}
}

// readFrames reads up to want JPEG frames and returns how many arrived.
func readFrames(ctx context.Context, wsURL string, want int) (int, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		deadline := time.Now().Add(100 * time.Millisecond)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		ws.WriteControl(websocket.CloseMessage, msg, deadline)

		ws.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		ws.SetReadDeadline(deadline)
	}

	n := 0
	for n < want {
		typ, data, err := ws.ReadMessage()
		if err != nil {
			return n, err
		}
		if typ != websocket.BinaryMessage {
			return n, fmt.Errorf("unexpected message type %d", typ)
		}
		if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err != nil {
			return n, fmt.Errorf("frame %d: %w", n, err)
		}
		n++
	}
	return n, nil
}

type Result struct {
	Duration time.Duration
	Frames   int
	Err      error
}
