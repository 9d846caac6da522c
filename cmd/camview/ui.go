package main

import (
	"fmt"

	"github.com/dialup-inc/camkit/camera"
)

const help = "c: capture  q: quit"

// An event is something that changes what the terminal view shows.
type event interface{}

type stateEvent camera.State

type captureStartedEvent struct{}

// savedEvent carries the path of a stored capture.
type savedEvent string

type errorEvent struct {
	Err error
}

type view struct {
	State     camera.State
	Capturing bool
	LastSaved string
	Err       string
}

func reduce(v view, e event) view {
	switch e := e.(type) {
	case stateEvent:
		v.State = camera.State(e)
		if v.State == camera.StatePreview {
			v.Capturing = false
		}
	case captureStartedEvent:
		v.Capturing = true
		v.Err = ""
	case savedEvent:
		v.LastSaved = string(e)
	case errorEvent:
		v.Capturing = false
		v.Err = e.Err.Error()
	}
	return v
}

func (v view) status() string {
	switch {
	case v.Err != "":
		return fmt.Sprintf("[%s] error: %s  %s", v.State, v.Err, help)
	case v.Capturing:
		return fmt.Sprintf("[%s] capturing...", v.State)
	case v.LastSaved != "":
		return fmt.Sprintf("[%s] saved %s  %s", v.State, v.LastSaved, help)
	default:
		return fmt.Sprintf("[%s] %s", v.State, help)
	}
}
