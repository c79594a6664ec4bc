package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleForm = `[
	{"key":"Personal Details","data":[
		{"key":"Name","value":"Asha Rao"},
		{"key":"Date of Birth","value":"1995-08-15","fieldType":"date"},
		{"key":"Birth Time","value":"06:45","fieldType":"time"},
		{"key":"Education","value":"M.Tech"}
	]},
	{"key":"Family Details","data":[
		{"key":"Father","value":"Ravi Rao"},
		{"key":"Mother","value":""},
		{"key":"Siblings","value":["One brother","One sister"]}
	]}
]`

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type stubLoader struct {
	img   *Image
	err   error
	calls int
}

func (s *stubLoader) Load(context.Context, string) (*Image, error) {
	s.calls++
	return s.img, s.err
}

func newTestRenderer(t *testing.T, images ImageLoader) *PDFRenderer {
	t.Helper()
	r, err := NewPDFRenderer(images, zap.NewNop(), "")
	require.NoError(t, err)
	return r
}

func TestPDFRenderer_EveryTemplate(t *testing.T) {
	loader := &stubLoader{img: &Image{Data: samplePNG(t), Type: "PNG"}}
	r := newTestRenderer(t, loader)

	for _, tpl := range Catalog() {
		t.Run(tpl.ID, func(t *testing.T) {
			for _, preview := range []bool{false, true} {
				out, err := r.Render(context.Background(), Input{
					TemplateID: tpl.ID,
					FormData:   []byte(sampleForm),
					ImagePath:  "https://img.example/photo.png",
					Preview:    preview,
				})
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
			}
		})
	}
	assert.Equal(t, 2*len(Catalog()), loader.calls)
}

func TestPDFRenderer_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t, nil)
	_, err := r.Render(context.Background(), Input{TemplateID: "eg99", FormData: []byte(sampleForm)})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestPDFRenderer_InvalidFormData(t *testing.T) {
	r := newTestRenderer(t, nil)
	_, err := r.Render(context.Background(), Input{TemplateID: "eg0", FormData: []byte(`42`)})
	assert.ErrorIs(t, err, ErrInvalidFormData)
}

func TestPDFRenderer_SkipsBrokenImages(t *testing.T) {
	cases := map[string]*stubLoader{
		"load error":   {err: errors.New("boom")},
		"corrupt data": {img: &Image{Data: []byte("\x89PNG\r\n\x1a\nnot really"), Type: "PNG"}},
	}
	for name, loader := range cases {
		t.Run(name, func(t *testing.T) {
			r := newTestRenderer(t, loader)
			out, err := r.Render(context.Background(), Input{
				TemplateID: "eg1",
				FormData:   []byte(`{"name":"X"}`),
				ImagePath:  "https://img.example/x.png",
			})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
			assert.Equal(t, 1, loader.calls)
		})
	}
}

func TestPDFRenderer_NoImagePathSkipsLoader(t *testing.T) {
	loader := &stubLoader{}
	r := newTestRenderer(t, loader)
	_, err := r.Render(context.Background(), Input{TemplateID: "eg0", FormData: []byte(`{"name":"X"}`)})
	require.NoError(t, err)
	assert.Zero(t, loader.calls)
}

func TestPDFRenderer_CancelledContext(t *testing.T) {
	r := newTestRenderer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Render(ctx, Input{TemplateID: "eg0", FormData: []byte(`{"name":"X"}`)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPDFRenderer_MissingFont(t *testing.T) {
	_, err := NewPDFRenderer(nil, zap.NewNop(), "/nonexistent/font.ttf")
	assert.Error(t, err)
}

func TestDocumentName_MasksLateNameInPreview(t *testing.T) {
	sections := []Section{{Key: "Details", Data: []Field{
		{Key: "Height", Value: "5ft"},
		{Key: "City", Value: "Pune"},
		{Key: "Name", Value: "Asha"},
	}}}

	assert.Equal(t, "Asha", (&document{}).name(sections))
	assert.Equal(t, "*sh*", (&document{preview: true}).name(sections))

	early := []Section{{Key: "Details", Data: []Field{{Key: "name", Value: "Asha"}}}}
	assert.Equal(t, "Asha", (&document{preview: true}).name(early))
}
