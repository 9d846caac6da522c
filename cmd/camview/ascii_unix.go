//go:build linux || darwin

package main

import (
	"context"
	"sync"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/term"
)

func runASCII(ctx context.Context, a *app) error {
	r := term.NewRenderer()

	var (
		mu sync.Mutex
		v  = view{State: a.cam.State()}
	)
	dispatch := func(e event) {
		mu.Lock()
		v = reduce(v, e)
		status := v.status()
		mu.Unlock()

		r.SetStatus(status)
	}

	sub, err := a.cam.OnDecodedPreview(func(e camera.DecodedPreviewEvent) {
		r.SetImage(e.Image)
	})
	if err != nil {
		return err
	}
	defer sub.Remove()

	stateSub := a.cam.OnStateChanged(func(e camera.StateChangedEvent) {
		dispatch(stateEvent(e.Current))
	})
	defer stateSub.Remove()

	quit := make(chan struct{}, 1)
	restore, err := term.CaptureStdin(func(c rune) {
		switch c {
		case 3, 4, 'q': // ctrl-c, ctrl-d
			select {
			case quit <- struct{}{}:
			default:
			}
		case 'c':
			if _, err := a.capture(); err != nil {
				dispatch(errorEvent{err})
			} else {
				dispatch(captureStartedEvent{})
			}
		}
	})
	if err != nil {
		return err
	}
	defer restore()

	dispatch(stateEvent(a.cam.State()))
	r.Start()
	defer r.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case path := <-a.saved:
			dispatch(savedEvent(path))
		}
	}
}
