package yuv

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestFromI420(t *testing.T) {
	frame := make([]byte, 4*2*3/2)
	for i := range frame {
		frame[i] = byte(i)
	}

	img, err := FromI420(frame, 4, 2)
	if err != nil {
		t.Fatalf("FromI420() error: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("Bounds() = %v, want 4x2", img.Bounds())
	}
	if !bytes.Equal(img.Y, frame[:8]) {
		t.Errorf("Y = %v, want %v", img.Y, frame[:8])
	}
	if !bytes.Equal(img.Cb, frame[8:10]) || !bytes.Equal(img.Cr, frame[10:12]) {
		t.Errorf("Cb, Cr = %v, %v", img.Cb, img.Cr)
	}
}

func TestFromI420Short(t *testing.T) {
	if _, err := FromI420(make([]byte, 5), 4, 2); err == nil {
		t.Error("FromI420 with short frame succeeded")
	}
	if _, err := FromI420(make([]byte, 100), 3, 3); err == nil {
		t.Error("FromI420 with odd size succeeded")
	}
}

func TestSemiPlanarOrder(t *testing.T) {
	frame := []byte{
		16, 16, 16, 16, // Y
		16, 16, 16, 16,
		1, 2, 3, 4, // interleaved chroma
	}

	nv12, err := FromNV12(frame, 4, 2)
	if err != nil {
		t.Fatalf("FromNV12() error: %v", err)
	}
	if !bytes.Equal(nv12.Cb, []byte{1, 3}) || !bytes.Equal(nv12.Cr, []byte{2, 4}) {
		t.Errorf("NV12 Cb, Cr = %v, %v, want [1 3], [2 4]", nv12.Cb, nv12.Cr)
	}

	nv21, err := FromNV21(frame, 4, 2)
	if err != nil {
		t.Fatalf("FromNV21() error: %v", err)
	}
	if !bytes.Equal(nv21.Cb, []byte{2, 4}) || !bytes.Equal(nv21.Cr, []byte{1, 3}) {
		t.Errorf("NV21 Cb, Cr = %v, %v, want [2 4], [1 3]", nv21.Cb, nv21.Cr)
	}
}

func TestFromYUYV(t *testing.T) {
	frame := []byte{
		10, 100, 20, 200, // row 0: Y0 U Y1 V
		30, 110, 40, 210, // row 1
	}

	img, err := FromYUYV(frame, 2, 2)
	if err != nil {
		t.Fatalf("FromYUYV() error: %v", err)
	}

	wantY := map[image.Point]uint8{
		{0, 0}: 10, {1, 0}: 20,
		{0, 1}: 30, {1, 1}: 40,
	}
	for p, want := range wantY {
		if got := img.Y[img.YOffset(p.X, p.Y)]; got != want {
			t.Errorf("Y at %v = %d, want %d", p, got, want)
		}
	}
	if got := img.Cb[img.COffset(0, 1)]; got != 110 {
		t.Errorf("Cb at row 1 = %d, want 110", got)
	}
	if got := img.Cr[img.COffset(1, 0)]; got != 200 {
		t.Errorf("Cr at row 0 = %d, want 200", got)
	}
}

func TestI420RoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	fill := color.RGBA{R: 200, G: 40, B: 90, A: 255}
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}

	frame, w, h := ToI420(src)
	if w != 8 || h != 4 {
		t.Fatalf("ToI420 size = %dx%d, want 8x4", w, h)
	}
	if len(frame) != 8*4*3/2 {
		t.Fatalf("len(frame) = %d, want %d", len(frame), 8*4*3/2)
	}

	img, err := FromI420(frame, w, h)
	if err != nil {
		t.Fatalf("FromI420() error: %v", err)
	}

	wantY, wantCb, wantCr := color.RGBToYCbCr(fill.R, fill.G, fill.B)
	got := img.YCbCrAt(3, 2)
	if got.Y != wantY || got.Cb != wantCb || got.Cr != wantCr {
		t.Errorf("YCbCrAt(3, 2) = %v, want {%d %d %d}", got, wantY, wantCb, wantCr)
	}
}

func TestJPEG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 8))

	data, err := ToJPEG(src, 80)
	if err != nil {
		t.Fatalf("ToJPEG() error: %v", err)
	}

	img, err := FromJPEG(data)
	if err != nil {
		t.Fatalf("FromJPEG() error: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("decoded bounds = %v, want 16x8", img.Bounds())
	}

	if _, err := FromJPEG([]byte("not a jpeg")); err == nil {
		t.Error("FromJPEG with garbage succeeded")
	}
}
