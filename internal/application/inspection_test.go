package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	_ "github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"ppe-inspector/internal/domain/entity"
)

type fakeDetector struct {
	detections []entity.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	f.calls++
	return f.detections, f.err
}

type fakeAnnotator struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeAnnotator) Annotate(imageData []byte, detections []entity.Detection, cm entity.ComplianceMap) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

type fakeDescriber struct {
	text string
	err  error
}

func (f *fakeDescriber) Describe(ctx context.Context, summary *entity.Summary) (*entity.AiDescription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.AiDescription{Text: f.text}, nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newService(d *fakeDetector, a *fakeAnnotator, opts InspectionOptions) *InspectionService {
	return NewInspectionService(d, a, nil, NewAggregator(entity.DefaultComplianceMap()), opts)
}

func TestInspectionService_NoImage(t *testing.T) {
	d := &fakeDetector{}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{})

	_, err := svc.ProcessPhoto(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoImage)
	require.Zero(t, d.calls)
}

func TestInspectionService_TooLarge(t *testing.T) {
	d := &fakeDetector{}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{MaxImageBytes: 16})

	_, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.ErrorIs(t, err, ErrImageTooLarge)
	require.Zero(t, d.calls)
}

func TestInspectionService_UnsupportedImage(t *testing.T) {
	d := &fakeDetector{}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{})

	_, err := svc.ProcessPhoto(context.Background(), []byte("%PDF-1.4 not an image"))
	require.ErrorIs(t, err, ErrUnsupportedImage)
	require.Zero(t, d.calls)
}

func TestInspectionService_RejectsOtherDecodableFormats(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	d := &fakeDetector{}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{})

	_, err := svc.ProcessPhoto(context.Background(), buf.Bytes())
	require.ErrorIs(t, err, ErrUnsupportedImage)
	require.Zero(t, d.calls)
}

func TestInspectionService_DetectorNotConfigured(t *testing.T) {
	svc := NewInspectionService(nil, nil, nil, NewAggregator(entity.DefaultComplianceMap()), InspectionOptions{})

	_, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.ErrorIs(t, err, ErrDetectorNotConfigured)
}

func TestInspectionService_InferenceFailure(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	d := &fakeDetector{err: backendErr}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{})

	_, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.ErrorIs(t, err, ErrInferenceFailed)
	require.ErrorIs(t, err, backendErr)
	require.Equal(t, 1, d.calls)
}

func TestInspectionService_NoDetections(t *testing.T) {
	a := &fakeAnnotator{out: []byte("jpeg")}
	svc := newService(&fakeDetector{}, a, InspectionOptions{})

	out, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.NoError(t, err)
	require.True(t, out.Summary.NoDetections)
	require.Nil(t, out.Annotated)
	require.Zero(t, a.calls)
	require.Equal(t, "png", out.Format)
	require.Equal(t, 8, out.Width)
}

func TestInspectionService_Detections(t *testing.T) {
	d := &fakeDetector{detections: []entity.Detection{
		det("Hardhat", 0.95),
		det("NO-Safety Vest", 0.88),
		det("Person", 0.99),
	}}
	a := &fakeAnnotator{out: []byte("jpeg")}
	svc := newService(d, a, InspectionOptions{})

	out, err := svc.ProcessPhoto(context.Background(), testPNG(t, 16, 12))
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg"), out.Annotated)
	require.Equal(t, 2, out.Summary.Workers)
	require.Equal(t, 1, out.Summary.Violations)
	require.Equal(t, 16, out.Width)
	require.Equal(t, 12, out.Height)
	require.Nil(t, out.Description)
}

func TestInspectionService_AnnotateFailureIsNotFatal(t *testing.T) {
	d := &fakeDetector{detections: []entity.Detection{det("Person", 0.9)}}
	a := &fakeAnnotator{err: errors.New("draw failed")}
	svc := newService(d, a, InspectionOptions{})

	out, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.NoError(t, err)
	require.Nil(t, out.Annotated)
	require.Equal(t, 1, out.Summary.Workers)
}

func TestInspectionService_MinConfidence(t *testing.T) {
	d := &fakeDetector{detections: []entity.Detection{
		det("NO-Mask", 0.2),
		det("Person", 0.9),
	}}
	svc := newService(d, &fakeAnnotator{}, InspectionOptions{MinConfidence: 0.5})

	out, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.NoError(t, err)
	require.Len(t, out.Detections, 1)
	require.Equal(t, "Person", out.Summary.PrimaryLabel())
	require.Zero(t, out.Summary.Violations)
}

func TestInspectionService_Describer(t *testing.T) {
	d := &fakeDetector{detections: []entity.Detection{det("Person", 0.9)}}
	agg := NewAggregator(entity.DefaultComplianceMap())

	svc := NewInspectionService(d, &fakeAnnotator{}, &fakeDescriber{text: "one worker"}, agg, InspectionOptions{})
	out, err := svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.NoError(t, err)
	require.Equal(t, "one worker", out.Description.Text)

	svc = NewInspectionService(d, &fakeAnnotator{}, &fakeDescriber{err: errors.New("llm down")}, agg, InspectionOptions{})
	out, err = svc.ProcessPhoto(context.Background(), testPNG(t, 8, 8))
	require.NoError(t, err)
	require.Nil(t, out.Description)
}
