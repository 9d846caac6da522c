//go:build !(linux || darwin)

package main

import (
	"context"
	"errors"
)

func runASCII(ctx context.Context, a *app) error {
	return errors.New("ascii mode needs a unix terminal")
}
