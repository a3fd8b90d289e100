package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/vellum/fonts"
	"github.com/ByLCY/vellum/layout"
	"github.com/ByLCY/vellum/objects"
	"github.com/ByLCY/vellum/renderer"
)

// Format selects the output encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatPDF
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// It doubles as the layout.Shaper, so measurement during layout and the
// final drawing share the same font metrics.
type Renderer struct {
	format  Format
	objects *objects.Set

	fontMu   sync.Mutex
	families map[fontKey]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Shaper     = (*Renderer)(nil)
)

type fontKey struct {
	kind   fonts.Kind
	bold   bool
	italic bool
}

// New creates a renderer emitting the given format. objs holds the page's
// binary objects and may be nil.
func New(format Format, objs *objects.Set) *Renderer {
	return &Renderer{
		format:   format,
		objects:  objs,
		families: map[fontKey]*canvas.FontFamily{},
	}
}

// MeasureWidth implements layout.Shaper.
// 字体系统返回毫米，这里换算为像素交还布局。
func (r *Renderer) MeasureWidth(text string, style layout.Style, dpi float64) (float64, error) {
	face, err := r.face(style)
	if err != nil {
		return 0, err
	}
	return layout.MmToPx(face.TextWidth(text), dpi), nil
}

// Metrics implements layout.Shaper.
func (r *Renderer) Metrics(style layout.Style, dpi float64) (layout.Metrics, error) {
	face, err := r.face(style)
	if err != nil {
		return layout.Metrics{}, err
	}
	m := face.Metrics()
	return layout.Metrics{
		Ascent:     layout.MmToPx(m.Ascent, dpi),
		Descent:    layout.MmToPx(m.Descent, dpi),
		LineHeight: layout.MmToPx(m.LineHeight, dpi),
	}, nil
}

// Render renders the result into a PNG or PDF byte slice.
// 画布以毫米建立，像素坐标在绘制边界换算；PNG 栅格化时按 DPI 还原像素分辨率。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || result.Root == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	dpi := result.DPI
	if dpi <= 0 {
		dpi = layout.DefaultDPI
	}
	widthMm := layout.PxToMm(result.Width, dpi)
	heightMm := layout.PxToMm(result.Height, dpi)
	c := canvas.New(widthMm, heightMm)
	ctx := canvas.NewContext(c)
	// 与布局一致：原点取左上角，Y 轴向下
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(widthMm, heightMm))

	// 父框架先出栈，背景自然垫在子内容之下
	stack := []*layout.Frame{result.Root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := r.paintFrame(ctx, f, dpi); err != nil {
			return nil, err
		}
		for i := len(f.Children) - 1; i >= 0; i-- {
			stack = append(stack, f.Children[i])
		}
	}

	if r.format == FormatPDF {
		return encodePDF(c, widthMm, heightMm)
	}
	return encodePNG(c, dpi)
}

func (r *Renderer) paintFrame(ctx *canvas.Context, f *layout.Frame, dpi float64) error {
	if f.Node == nil {
		return nil
	}
	if bg := f.Node.Style.Background; bg != nil && f.Width > 0 && f.Height > 0 {
		ctx.SetFillColor(colorFromLayout(*bg))
		ctx.DrawPath(
			layout.PxToMm(f.X, dpi), layout.PxToMm(f.Y, dpi),
			canvas.Rectangle(layout.PxToMm(f.Width, dpi), layout.PxToMm(f.Height, dpi)),
		)
	}
	switch f.Node.Kind {
	case layout.KindText, layout.KindLink, layout.KindInline:
		return r.paintLines(ctx, f, dpi)
	case layout.KindRef:
		if f.Image != nil {
			return r.paintImage(ctx, f, dpi)
		}
		// 未解析的引用退化为替代文本
		return r.paintLines(ctx, f, dpi)
	}
	return nil
}

// paintLines 逐行逐段绘制文本。
// 基线位置：行顶部（像素）加上该行最大上升部，换算为毫米后交给 DrawText。
func (r *Renderer) paintLines(ctx *canvas.Context, f *layout.Frame, dpi float64) error {
	y := f.Y
	for _, line := range f.Lines {
		x := f.X
		baseline := y + line.Ascent
		for _, span := range line.Spans {
			if bg := span.Style.Background; bg != nil && span.Width > 0 {
				ctx.SetFillColor(colorFromLayout(*bg))
				ctx.DrawPath(
					layout.PxToMm(x, dpi), layout.PxToMm(y, dpi),
					canvas.Rectangle(layout.PxToMm(span.Width, dpi), layout.PxToMm(line.Height, dpi)),
				)
			}
			if span.Text != "" {
				face, err := r.face(span.Style)
				if err != nil {
					return err
				}
				textLine := canvas.NewTextLine(face, span.Text, canvas.Left)
				ctx.DrawText(layout.PxToMm(x, dpi), layout.PxToMm(baseline, dpi), textLine)
			}
			x += span.Width
		}
		y += line.Height
	}
	return nil
}

func (r *Renderer) paintImage(ctx *canvas.Context, f *layout.Frame, dpi float64) error {
	img, err := r.objects.Image(f.Image.Name)
	if err != nil {
		return fmt.Errorf("解码对象 %q 失败: %w", f.Image.Name, err)
	}
	widthMm := layout.PxToMm(f.Image.Width, dpi)
	if widthMm <= 0 {
		return nil
	}
	// DrawImage 以 dpmm 控制缩放：源像素宽除以目标毫米宽
	dpmm := float64(img.Bounds().Dx()) / widthMm
	ctx.DrawImage(layout.PxToMm(f.X, dpi), layout.PxToMm(f.Y, dpi), img, canvas.DPMM(dpmm))
	return nil
}

// face 构造带颜色与装饰的字面。字号以 pt 交给字体系统。
func (r *Renderer) face(style layout.Style) (*canvas.FontFace, error) {
	fam, err := r.family(style)
	if err != nil {
		return nil, err
	}
	args := []interface{}{colorFromLayout(style.Foreground), canvas.FontRegular, canvas.FontNormal}
	if style.Decoration.Has(layout.DecorUnderline) {
		args = append(args, canvas.FontUnderline)
	}
	if style.Decoration.Has(layout.DecorStrike) {
		args = append(args, canvas.FontStrikethrough)
	}
	return fam.Face(style.Size, args...), nil
}

// family 按字族与字重懒加载并缓存字体家族。粗体与斜体各自装载独立的
// 字体文件并以常规字面注册，不依赖合成样式。
func (r *Renderer) family(style layout.Style) (*canvas.FontFamily, error) {
	key := fontKey{kind: fontKind(style.Family), bold: style.Bold(), italic: style.Italic()}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.families == nil {
		r.families = map[fontKey]*canvas.FontFamily{}
	}
	if fam, ok := r.families[key]; ok {
		return fam, nil
	}
	data, err := fonts.Load(key.kind, key.bold, key.italic)
	if err != nil {
		return nil, err
	}
	fam := canvas.NewFontFamily(fontFamilyName(key))
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("装载字体失败: %w", err)
	}
	r.families[key] = fam
	return fam, nil
}

func fontFamilyName(key fontKey) string {
	name := "vellum-" + key.kind.String()
	if key.bold {
		name += "-bold"
	}
	if key.italic {
		name += "-italic"
	}
	return name
}

func fontKind(f layout.FontFamily) fonts.Kind {
	switch f {
	case layout.FamilySerif:
		return fonts.Serif
	case layout.FamilyMono:
		return fonts.Mono
	}
	return fonts.Sans
}

func colorFromLayout(c layout.Color) color.Color {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xFF}
}

func encodePNG(c *canvas.Canvas, dpi float64) ([]byte, error) {
	img := rasterizer.Draw(c, canvas.DPMM(dpi/25.4), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func encodePDF(c *canvas.Canvas, widthMm, heightMm float64) ([]byte, error) {
	var buf bytes.Buffer
	writer := pdf.New(&buf, widthMm, heightMm, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
