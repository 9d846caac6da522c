package main

import (
	"errors"
	"testing"

	"github.com/dialup-inc/camkit/camera"
)

func TestReduce(t *testing.T) {
	steps := []struct {
		e    event
		want string
	}{
		{stateEvent(camera.StatePreview), "[preview] " + help},
		{captureStartedEvent{}, "[preview] capturing..."},
		{stateEvent(camera.StateCapturing), "[capturing] capturing..."},
		{savedEvent("a.jpg"), "[capturing] capturing..."},
		{stateEvent(camera.StatePreview), "[preview] saved a.jpg  " + help},
		{errorEvent{errors.New("busy")}, "[preview] error: busy  " + help},
		{captureStartedEvent{}, "[preview] capturing..."},
	}

	var v view
	for i, s := range steps {
		v = reduce(v, s.e)
		if got := v.status(); got != s.want {
			t.Errorf("step %d: status = %q, want %q", i, got, s.want)
		}
	}
}
