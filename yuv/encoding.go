// Package yuv converts raw camera buffers to and from Go images.
package yuv

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

func checkSize(frame []byte, want int) error {
	if want > len(frame) {
		return fmt.Errorf("frame length (%d) less than expected (%d)", len(frame), want)
	}
	return nil
}

func checkDims(width, height int) error {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("bad frame size %dx%d", width, height)
	}
	return nil
}

// FromI420 decodes an i420-encoded YUV image into a Go Image.
//
// See https://www.fourcc.org/pixel-format/yuv-i420/
func FromI420(frame []byte, width, height int) (*image.YCbCr, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}

	yi := width * height
	cbi := yi + width*height/4
	cri := cbi + width*height/4

	if err := checkSize(frame, cri); err != nil {
		return nil, err
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             frame[yi:cbi],
		Cr:             frame[cbi:cri],
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, nil
}

// fromSemiPlanar splits the interleaved chroma plane of NV12/NV21 frames.
func fromSemiPlanar(frame []byte, width, height int, crFirst bool) (*image.YCbCr, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}

	yi := width * height
	ci := yi + width*height/2

	if err := checkSize(frame, ci); err != nil {
		return nil, err
	}

	n := (ci - yi) / 2
	cb := make([]byte, 0, n)
	cr := make([]byte, 0, n)
	for i := yi; i < ci; i += 2 {
		u, v := frame[i], frame[i+1]
		if crFirst {
			u, v = v, u
		}
		cb = append(cb, u)
		cr = append(cr, v)
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             cb,
		Cr:             cr,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, nil
}

// FromNV12 decodes an NV12 image (Y plane, then interleaved Cb Cr).
//
// See https://www.fourcc.org/pixel-format/yuv-nv12/
func FromNV12(frame []byte, width, height int) (*image.YCbCr, error) {
	return fromSemiPlanar(frame, width, height, false)
}

// FromNV21 decodes an NV21 image (Y plane, then interleaved Cr Cb).
//
// See https://www.fourcc.org/pixel-format/yuv-nv21/
func FromNV21(frame []byte, width, height int) (*image.YCbCr, error) {
	return fromSemiPlanar(frame, width, height, true)
}

// FromYUYV decodes a packed 4:2:2 YUYV (YUY2) image, the default format of
// most USB webcams.
//
// See https://www.fourcc.org/pixel-format/yuv-yuy2/
func FromYUYV(frame []byte, width, height int) (*image.YCbCr, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}
	if err := checkSize(frame, width*height*2); err != nil {
		return nil, err
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := frame[y*width*2 : (y+1)*width*2]
		for x := 0; x < width; x += 2 {
			p := row[x*2 : x*2+4]
			img.Y[y*img.YStride+x] = p[0]
			img.Y[y*img.YStride+x+1] = p[2]

			ci := img.COffset(x, y)
			img.Cb[ci] = p[1]
			img.Cr[ci] = p[3]
		}
	}
	return img, nil
}

// FromJPEG decodes a JPEG or MJPEG frame.
func FromJPEG(frame []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(frame))
}

// ToJPEG encodes img at the given quality.
func ToJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func convertTo420(img image.Image) *image.YCbCr {
	bounds := img.Bounds()
	img420 := image.NewYCbCr(bounds, image.YCbCrSubsampleRatio420)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))

			cy := img420.YOffset(x, y)
			ci := img420.COffset(x, y)
			img420.Y[cy] = yy
			img420.Cb[ci] = cb
			img420.Cr[ci] = cr
		}
	}

	return img420
}

// ToI420 converts a Go image into an I420-encoded YUV raw image slice
//
// See https://www.fourcc.org/pixel-format/yuv-i420/
func ToI420(img image.Image) (frame []byte, width, height int) {
	bounds := img.Bounds()

	var img420 *image.YCbCr
	if y, ok := img.(*image.YCbCr); ok && y.SubsampleRatio == image.YCbCrSubsampleRatio420 && y.YStride == bounds.Dx() {
		// If the image is already I420, just use it
		img420 = y
	} else {
		// Otherwise convert it to I420
		img420 = convertTo420(img)
	}

	frame = append(frame, img420.Y...)
	frame = append(frame, img420.Cb...)
	frame = append(frame, img420.Cr...)

	return frame, bounds.Dx(), bounds.Dy()
}
