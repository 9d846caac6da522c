package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/dialup-inc/camkit/yuv"
)

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"bmp":  ".bmp",
	"tiff": ".tif",
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		return yuv.ToJPEG(img, quality)
	case "png":
		err = png.Encode(&buf, img)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return nil, fmt.Errorf("unknown capture format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
