package layout

import "github.com/ByLCY/vellum/objects"

// Options 配置一次布局的输入与协作方。
type Options struct {
	ViewportWidth  float64      // 视口宽度（px），根节点的可用宽度
	ViewportHeight float64      // 视口高度（px），只作为成品页面的最小高度
	DPI            float64      // 像素密度，0 取 DefaultDPI
	Shaper         Shaper       // 文本测量协作方，为空时退回内置估算
	Objects        *objects.Set // 随文档带外下发的二进制对象
	Debug          DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Styles bool // 在调试 JSON 的每个 Frame 上输出解析后的完整样式
}

// Metrics 是排版协作方给出的纵向度量，单位 px。
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// Shaper 负责按样式测量文本，布局引擎逐词同步调用。实现内部若是异步
// 或网络服务，须阻塞到返回测量值或超时错误；引擎不做重试。
type Shaper interface {
	MeasureWidth(text string, style Style, dpi float64) (float64, error)
	Metrics(style Style, dpi float64) (Metrics, error)
}

// estimateShaper 是 Shaper 缺省时的粗略估算：半角字符按字号的经验系数
// 计宽，全角字符按整字号计宽。
type estimateShaper struct{}

func (estimateShaper) MeasureWidth(text string, style Style, dpi float64) (float64, error) {
	size := PtToPx(style.Size, dpi)
	w := 0.0
	for _, r := range text {
		if r < 128 {
			w += size * 0.52
		} else {
			w += size
		}
	}
	return w, nil
}

func (estimateShaper) Metrics(style Style, dpi float64) (Metrics, error) {
	size := PtToPx(style.Size, dpi)
	return Metrics{Ascent: size * 0.8, Descent: size * 0.2, LineHeight: size * 1.4}, nil
}
