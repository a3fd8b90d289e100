package layout

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// 该文件定义文档树、样式与布局结果，供布局计算、渲染与调试输出共用。

// FontFamily 枚举标记语言支持的三类字族。
type FontFamily int

const (
	FamilySans FontFamily = iota
	FamilySerif
	FamilyMono
)

func (f FontFamily) String() string {
	switch f {
	case FamilySerif:
		return "serif"
	case FamilyMono:
		return "mono"
	}
	return "sans"
}

// FontWeight 枚举字重。
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

// Decoration 是可组合的文字修饰位集，斜体在标记语言中同样作为修饰处理。
type Decoration uint8

const (
	DecorUnderline Decoration = 1 << iota
	DecorStrike
	DecorItalic
)

// Has 判断是否包含指定修饰。
func (d Decoration) Has(flag Decoration) bool {
	return d&flag != 0
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Style 是节点解析完成后的全部样式属性。Fill 为 0 表示未声明，
// 负值非法，由布局阶段降级为不参与分配。
type Style struct {
	Family     FontFamily `json:"family"`
	Weight     FontWeight `json:"weight"`
	Decoration Decoration `json:"decoration"`
	Foreground Color      `json:"fg"`
	Background *Color     `json:"bg,omitempty"` // 为空表示不绘制背景
	Size       float64    `json:"size"`         // 字号（pt）
	Fill       float64    `json:"fill,omitempty"`
}

// Bold 判断是否为粗体。
func (s Style) Bold() bool {
	return s.Weight == WeightBold
}

// Italic 判断是否为斜体。
func (s Style) Italic() bool {
	return s.Decoration.Has(DecorItalic)
}

// styleEq 比较两个样式是否完全一致（背景色按值比较）。
func styleEq(a, b Style) bool {
	if a.Family != b.Family || a.Weight != b.Weight || a.Decoration != b.Decoration ||
		a.Foreground != b.Foreground || a.Size != b.Size || a.Fill != b.Fill {
		return false
	}
	if a.Background == nil || b.Background == nil {
		return a.Background == b.Background
	}
	return *a.Background == *b.Background
}

// NodeKind 枚举文档节点类型。
type NodeKind int

const (
	KindText NodeKind = iota
	KindBox
	KindVBox
	KindInline
	KindAnchor
	KindLink
	KindRef
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBox:
		return "box"
	case KindVBox:
		return "vbox"
	case KindInline:
		return "inline"
	case KindAnchor:
		return "anchor"
	case KindLink:
		return "link"
	case KindRef:
		return "ref"
	}
	return "unknown"
}

// Node 是带类型标签的文档树节点，按 Kind 取用字段：Text 的内容、
// Link 的 URL 与展示文本、Anchor 与 Ref 的名称、Ref 的替代文本、
// 容器的子节点。节点不保存父指针，布局所需的上下文自顶向下传递。
type Node struct {
	Kind     NodeKind       `json:"kind"`
	Style    Style          `json:"style"`
	Text     string         `json:"text,omitempty"`
	Name     string         `json:"name,omitempty"`
	URL      string         `json:"url,omitempty"`
	Alt      string         `json:"alt,omitempty"`
	Children []*Node        `json:"children,omitempty"`
	Pos      lexer.Position `json:"-"`
}

// Document 是构建完成的只读文档：根节点、命名样式表与构建期警告。
type Document struct {
	Root     *Node
	Styles   *StyleTable
	Warnings []Warning
}

// Frame 是布局输出中的一个已定位矩形，坐标相对页面左上角，单位 px。
// 文本类节点带 Lines，二进制引用带 Image。
type Frame struct {
	Node     *Node      `json:"-"`
	Kind     string     `json:"kind"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Style    *Style     `json:"style,omitempty"` // 仅在调试选项开启时填充
	Lines    []TextLine `json:"lines,omitempty"`
	Image    *ImageBox  `json:"image,omitempty"`
	Children []*Frame   `json:"children,omitempty"`

	content     float64     // 内容高度，不含父级拉伸；祖先高度只由它累计
	minW        float64     // 最小内容宽度（最长不可断单元）
	fill        float64     // 校验后的填充比例，0 表示按内容计宽
	runs        []styledRun // 折行前的样式运行
	tokens      []wrapToken // 切分后的折行单元
	anchorNames []string    // 该框架承载的锚点名
	placeholder bool        // 可用宽度耗尽后的 1px 占位
}

// TextLine 是折行后的一行，由若干样式一致的片段组成。
type TextLine struct {
	Spans  []Span  `json:"spans"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ascent float64 `json:"ascent"`
}

// Span 是一行内样式一致的片段；链接片段带目标 URL。
type Span struct {
	Text  string  `json:"text"`
	Style Style   `json:"style"`
	Width float64 `json:"width"`
	URL   string  `json:"url,omitempty"`
}

// ImageBox 记录二进制引用的绘制尺寸。图像只缩小不放大，
// 绘制尺寸可能小于所在 Frame 的分配宽度。
type ImageBox struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Link 对应文档中的一个链接：目标、展示文本与所在布局框。
type Link struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Frame *Frame `json:"-"`
}

// Result 保存一次布局的全部产物。Anchors 把锚点名映射到纵向偏移，
// Links 按文档顺序列出全部链接。
type Result struct {
	Root     *Frame             `json:"root"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	DPI      float64            `json:"dpi"`
	Anchors  map[string]float64 `json:"anchors,omitempty"`
	Links    []Link             `json:"links,omitempty"`
	Warnings []Warning          `json:"warnings,omitempty"`
}
