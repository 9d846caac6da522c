package main

import (
	"log"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/camera/v4l2"
)

func nativeDriver(logger *log.Logger) (camera.Driver, error) {
	return v4l2.New(logger), nil
}
