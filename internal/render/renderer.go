package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Input is everything needed to draw one biodata.
type Input struct {
	TemplateID string
	FormData   []byte
	ImagePath  string
	// Preview masks all but the first PreviewFields of every section and
	// stamps a watermark.
	Preview bool
}

type Renderer interface {
	Render(ctx context.Context, in Input) ([]byte, error)
}

const (
	utf8Family    = "body"
	photoName     = "photo"
	photoWidth    = 110.0
	photoHeight   = 135.0
	photoDiameter = 110.0
	borderInset   = 16.0
	lineHeight    = 16.0
	colonWidth    = 12.0
)

type PDFRenderer struct {
	images ImageLoader
	log    *zap.Logger
	font   []byte
}

// NewPDFRenderer reads the optional TTF at fontPath. Without it the core PDF
// fonts are used and text is translated to cp1252.
func NewPDFRenderer(images ImageLoader, log *zap.Logger, fontPath string) (*PDFRenderer, error) {
	r := &PDFRenderer{images: images, log: log}
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read render font: %w", err)
		}
		r.font = b
	}
	return r, nil
}

func (r *PDFRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	tpl, ok := Lookup(in.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, in.TemplateID)
	}
	sections, err := DecodeFormData(in.FormData)
	if err != nil {
		return nil, err
	}

	img := r.loadImage(ctx, in.ImagePath)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := r.newDocument(tpl.Style, in.Preview)
	d.draw(sections, img)

	if d.pdf.Err() {
		return nil, fmt.Errorf("render %s: %w", tpl.ID, d.pdf.Error())
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", tpl.ID, err)
	}
	return buf.Bytes(), nil
}

// loadImage never fails the render; a missing or unusable photo is skipped.
func (r *PDFRenderer) loadImage(ctx context.Context, path string) *Image {
	if strings.TrimSpace(path) == "" || r.images == nil {
		return nil
	}
	img, err := r.images.Load(ctx, path)
	if err != nil {
		r.log.Warn("Skipping biodata image", zap.String("image_path", path), zap.Error(err))
		return nil
	}
	// fpdf errors are sticky, so probe the image on a throwaway document first.
	probe := fpdf.New("P", "pt", "A4", "")
	probe.RegisterImageOptionsReader(photoName, fpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
	if probe.Err() {
		r.log.Warn("Skipping unreadable biodata image", zap.String("image_path", path), zap.Error(probe.Error()))
		return nil
	}
	return img
}

type document struct {
	pdf     *fpdf.Fpdf
	style   Style
	preview bool
	family  string
	tr      func(string) string

	pageW, pageH float64
	contentW     float64
	// photoBottom and photoReserve narrow rows drawn beside a side photo.
	photoBottom  float64
	photoReserve float64
}

func (r *PDFRenderer) newDocument(s Style, preview bool) *document {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Biodata", true)
	pdf.SetCreator("bmapp", true)

	d := &document{pdf: pdf, style: s, preview: preview, family: s.Font}
	if len(r.font) > 0 {
		pdf.AddUTF8FontFromBytes(utf8Family, "", r.font)
		pdf.AddUTF8FontFromBytes(utf8Family, "B", r.font)
		d.family = utf8Family
		d.tr = func(s string) string { return s }
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	d.pageW, d.pageH = pdf.GetPageSize()
	m := s.Margins
	d.contentW = d.pageW - m.Left - m.Right
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(true, m.Bottom)
	pdf.SetHeaderFuncMode(d.decoratePage, true)
	return d
}

// decoratePage paints background, frame and watermark under each page's content.
func (d *document) decoratePage() {
	pdf, s := d.pdf, d.style

	pdf.SetFillColor(s.Page.R, s.Page.G, s.Page.B)
	pdf.Rect(0, 0, d.pageW, d.pageH, "F")

	if s.BorderWidth > 0 {
		pdf.SetDrawColor(s.Border.R, s.Border.G, s.Border.B)
		pdf.SetLineWidth(s.BorderWidth)
		pdf.Rect(borderInset, borderInset, d.pageW-2*borderInset, d.pageH-2*borderInset, "D")
		if s.InnerBorder {
			in := borderInset + s.BorderWidth + 4
			pdf.SetLineWidth(1)
			pdf.Rect(in, in, d.pageW-2*in, d.pageH-2*in, "D")
		}
	}

	if d.preview {
		text := "PREVIEW"
		pdf.SetFont(d.family, "B", 96)
		pdf.SetTextColor(150, 150, 150)
		pdf.SetAlpha(0.18, "Normal")
		cx, cy := d.pageW/2, d.pageH/2
		pdf.TransformBegin()
		pdf.TransformRotate(45, cx, cy)
		pdf.Text(cx-pdf.GetStringWidth(text)/2, cy+30, text)
		pdf.TransformEnd()
		pdf.SetAlpha(1, "Normal")
	}
}

func (d *document) draw(sections []Section, img *Image) {
	pdf := d.pdf
	pdf.AddPage()

	if img != nil {
		d.drawPhoto(img)
	}
	if d.style.NameHighlight {
		if name := d.name(sections); name != "" {
			h := d.style.Heading
			if d.style.HeadingFill != nil {
				h = d.style.Label
			}
			pdf.SetFont(d.family, "B", 22)
			pdf.SetTextColor(h.R, h.G, h.B)
			pdf.CellFormat(d.contentW, 30, d.tr(name), "", 1, "C", false, 0, "")
			pdf.Ln(6)
		}
	}

	for _, sec := range sections {
		d.drawSection(sec)
	}
}

func (d *document) name(sections []Section) string {
	for _, s := range sections {
		for i, f := range s.Data {
			if !strings.EqualFold(strings.TrimSpace(f.Key), "name") {
				continue
			}
			v := FormatValue(f)
			if v == "" {
				continue
			}
			if d.preview && i >= PreviewFields {
				return MaskVowels(v)
			}
			return v
		}
	}
	return ""
}

func (d *document) drawPhoto(img *Image) {
	pdf := d.pdf
	opts := fpdf.ImageOptions{ImageType: img.Type}
	info := pdf.RegisterImageOptionsReader(photoName, opts, bytes.NewReader(img.Data))
	if info == nil || pdf.Err() {
		return
	}
	iw, ih := info.Width(), info.Height()
	m := d.style.Margins

	switch d.style.ImageVariant {
	case ImageFrontRound:
		r := photoDiameter / 2
		cx, cy := d.pageW/2, m.Top+r
		d.coverCircle(cx, cy, r, iw, ih, opts)
		pdf.SetY(m.Top + photoDiameter + 14)
	case ImageSideRound:
		r := photoDiameter / 2
		cx, cy := d.pageW-m.Right-r, m.Top+r
		d.coverCircle(cx, cy, r, iw, ih, opts)
		d.photoBottom = m.Top + photoDiameter + 8
		d.photoReserve = photoDiameter + 12
	default:
		scale := math.Min(photoWidth/iw, photoHeight/ih)
		w, h := iw*scale, ih*scale
		x := d.pageW - m.Right - photoWidth + (photoWidth-w)/2
		y := m.Top + (photoHeight-h)/2
		pdf.ImageOptions(photoName, x, y, w, h, false, opts, 0, "")
		b := d.style.Border
		pdf.SetDrawColor(b.R, b.G, b.B)
		pdf.SetLineWidth(1)
		pdf.Rect(d.pageW-m.Right-photoWidth, m.Top, photoWidth, photoHeight, "D")
		d.photoBottom = m.Top + photoHeight + 8
		d.photoReserve = photoWidth + 12
	}
}

func (d *document) coverCircle(cx, cy, r, iw, ih float64, opts fpdf.ImageOptions) {
	pdf := d.pdf
	scale := math.Max(2*r/iw, 2*r/ih)
	w, h := iw*scale, ih*scale
	pdf.ClipCircle(cx, cy, r, false)
	pdf.ImageOptions(photoName, cx-w/2, cy-h/2, w, h, false, opts, 0, "")
	pdf.ClipEnd()
	b := d.style.Border
	pdf.SetDrawColor(b.R, b.G, b.B)
	pdf.SetLineWidth(2)
	pdf.Circle(cx, cy, r, "D")
}

// rowWidth is the usable width at the current position.
func (d *document) rowWidth() float64 {
	if d.pdf.PageNo() == 1 && d.pdf.GetY() < d.photoBottom {
		return d.contentW - d.photoReserve
	}
	return d.contentW
}

func (d *document) drawSection(sec Section) {
	pdf, s := d.pdf, d.style

	title := strings.TrimSpace(sec.Key)
	if s.Uppercase {
		title = strings.ToUpper(title)
	}
	if title != "" {
		pdf.Ln(6)
		align := "L"
		if s.Layout == LayoutCenter {
			align = "C"
		}
		w := d.rowWidth()
		pdf.SetFont(d.family, "B", 13)
		pdf.SetTextColor(s.Heading.R, s.Heading.G, s.Heading.B)
		if s.HeadingFill != nil {
			pdf.SetFillColor(s.HeadingFill.R, s.HeadingFill.G, s.HeadingFill.B)
			pdf.CellFormat(w, 22, d.tr(title), "", 1, align, true, 0, "")
		} else {
			pdf.CellFormat(w, 22, d.tr(title), "", 1, align, false, 0, "")
			y := pdf.GetY()
			pdf.SetDrawColor(s.Heading.R, s.Heading.G, s.Heading.B)
			pdf.SetLineWidth(0.8)
			pdf.Line(s.Margins.Left, y, s.Margins.Left+w, y)
		}
		pdf.Ln(4)
	}

	for i, f := range sec.Data {
		value := FormatValue(f)
		if value == "" {
			continue
		}
		if d.preview && i >= PreviewFields {
			value = MaskVowels(value)
		}
		d.drawRow(strings.TrimSpace(f.Key), value)
	}
}

func (d *document) drawRow(label, value string) {
	pdf, s := d.pdf, d.style
	w := d.rowWidth()

	labelW, align := s.LabelWidth, "L"
	if s.Layout == LayoutCenter {
		labelW, align = w*0.42, "R"
	}

	pdf.SetFont(d.family, "B", 11)
	pdf.SetTextColor(s.Label.R, s.Label.G, s.Label.B)
	pdf.CellFormat(labelW, lineHeight, d.tr(label), "", 0, align, false, 0, "")
	pdf.CellFormat(colonWidth, lineHeight, ":", "", 0, "C", false, 0, "")

	pdf.SetFont(d.family, "", 11)
	pdf.SetTextColor(s.Value.R, s.Value.G, s.Value.B)
	pdf.MultiCell(w-labelW-colonWidth, lineHeight, d.tr(value), "", "L", false)
	pdf.Ln(2)
}
