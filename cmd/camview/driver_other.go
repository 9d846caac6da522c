//go:build !linux

package main

import (
	"errors"
	"log"

	"github.com/dialup-inc/camkit/camera"
)

func nativeDriver(logger *log.Logger) (camera.Driver, error) {
	return nil, errors.New("no camera driver for this platform, run with -mock")
}
