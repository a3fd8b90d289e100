package layout

import (
	"fmt"
	"math"
)

// 该文件是两阶段布局引擎：第一阶段自顶向下分配宽度，第二阶段自底向上
// 累计内容高度、再自顶向下定位并下发高度约束。全部遍历使用显式栈，
// 文档深度不受调用栈限制。

// Layout 在给定视口与排版协作方下布局文档，产出定位框架树。
// 文档与样式表在布局期间只读，同一文档可在多个视口下并发布局。
func Layout(doc *Document, opts Options) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("文档为空")
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	shaper := opts.Shaper
	if shaper == nil {
		shaper = estimateShaper{}
	}
	e := &engine{
		m:    newMeasurer(shaper, dpi),
		opts: opts,
		res: &Result{
			Width:   opts.ViewportWidth,
			DPI:     dpi,
			Anchors: map[string]float64{},
		},
	}
	e.res.Warnings = append(e.res.Warnings, doc.Warnings...)

	root := e.mirror(doc.Root)
	e.res.Root = root
	if err := e.minWidths(root); err != nil {
		return nil, err
	}
	e.assignWidths(root)
	if err := e.measureHeights(root); err != nil {
		return nil, err
	}
	e.position(root)

	e.res.Width = math.Max(root.Width, 1)
	e.res.Height = math.Max(math.Max(root.Height, opts.ViewportHeight), 1)
	tracer().Debugf("layout done: %gx%g px, %d links, %d anchors, %d warnings",
		e.res.Width, e.res.Height, len(e.res.Links), len(e.res.Anchors), len(e.res.Warnings))
	return e.res, nil
}

type engine struct {
	m    *measurer
	opts Options
	res  *Result
}

func (e *engine) warn(w Warning) {
	e.res.Warnings = append(e.res.Warnings, w)
}

// mirror 为文档树建立一比一的框架树。行内节点的子树在此处展平为
// 样式运行，不再生成子框架。
func (e *engine) mirror(node *Node) *Frame {
	root := e.newFrame(node)
	type task struct {
		node  *Node
		frame *Frame
	}
	stack := []task{{node, root}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.node.Kind == KindInline {
			continue
		}
		for _, child := range t.node.Children {
			cf := e.newFrame(child)
			t.frame.Children = append(t.frame.Children, cf)
			stack = append(stack, task{child, cf})
		}
	}
	return root
}

func (e *engine) newFrame(n *Node) *Frame {
	f := &Frame{Node: n, Kind: n.Kind.String()}
	if e.opts.Debug.Styles && n.Kind != KindAnchor {
		s := n.Style
		f.Style = &s
	}
	if n.Style.Fill < 0 {
		e.warn(Warning{
			Code: WarnInvalidFillRatio,
			Msg:  fmt.Sprintf("填充比例 %s 为负，按内容计宽", formatNum(n.Style.Fill)),
			Pos:  n.Pos,
		})
	} else {
		f.fill = n.Style.Fill
	}
	switch n.Kind {
	case KindText:
		f.runs = []styledRun{{text: n.Text, style: n.Style}}
	case KindLink:
		f.runs = []styledRun{{text: n.Text, style: n.Style, url: n.URL}}
	case KindInline:
		e.flattenInline(n, f)
	case KindAnchor:
		f.anchorNames = append(f.anchorNames, n.Name)
	case KindRef:
		if dim, ok := e.opts.Objects.Dim(n.Name); ok {
			f.Image = &ImageBox{
				Name:   n.Name,
				Width:  float64(dim.Width),
				Height: float64(dim.Height),
			}
		} else {
			e.warn(Warning{
				Code: WarnUnresolvedBinaryReference,
				Msg:  fmt.Sprintf("二进制对象 %q 未随文档下发，以替代文本呈现", n.Name),
				Pos:  n.Pos,
			})
			alt := n.Alt
			if alt == "" {
				alt = "[" + n.Name + "]"
			}
			f.runs = []styledRun{{text: alt, style: n.Style}}
		}
	}
	return f
}

// flattenInline 把行内子树展平成样式运行：文本与链接按序进入行流，
// 锚点挂在行内框架上，嵌套行内继续展开。
func (e *engine) flattenInline(n *Node, f *Frame) {
	stack := make([]*Node, 0, len(n.Children))
	for i := len(n.Children) - 1; i >= 0; i-- {
		stack = append(stack, n.Children[i])
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch c.Kind {
		case KindText:
			f.runs = append(f.runs, styledRun{text: c.Text, style: c.Style})
		case KindLink:
			f.runs = append(f.runs, styledRun{text: c.Text, style: c.Style, url: c.URL})
		case KindAnchor:
			f.anchorNames = append(f.anchorNames, c.Name)
		case KindInline:
			for i := len(c.Children) - 1; i >= 0; i-- {
				stack = append(stack, c.Children[i])
			}
		}
	}
}

// preOrder 返回先序遍历序列；倒序迭代即子先于父。
func preOrder(root *Frame) []*Frame {
	out := []*Frame{root}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children...)
	}
	return out
}

// minWidths 后序计算每个框架的必需宽度：文本取最长不可断单元，
// 图像取固有宽度，水平容器累加，垂直容器取最大。
func (e *engine) minWidths(root *Frame) error {
	order := preOrder(root)
	for i := len(order) - 1; i >= 0; i-- {
		f := order[i]
		switch f.Node.Kind {
		case KindText, KindLink, KindInline:
			tokens, err := tokenize(f.runs, e.m)
			if err != nil {
				return err
			}
			f.tokens = tokens
			f.minW = longestUnit(tokens)
		case KindRef:
			if f.Image != nil {
				f.minW = f.Image.Width
				break
			}
			tokens, err := tokenize(f.runs, e.m)
			if err != nil {
				return err
			}
			f.tokens = tokens
			f.minW = longestUnit(tokens)
		case KindBox:
			sum := 0.0
			for _, c := range f.Children {
				sum += c.minW
			}
			f.minW = sum
		case KindVBox:
			for _, c := range f.Children {
				f.minW = math.Max(f.minW, c.minW)
			}
		}
	}
	return nil
}

// assignWidths 自顶向下定宽。宽度耗尽且仍有内容的子树降级为 1px 占位。
func (e *engine) assignWidths(root *Frame) {
	root.Width = e.opts.ViewportWidth
	stack := []*Frame{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.Width <= 0 && f.minW > 0 {
			e.degrade(f)
			continue
		}
		if f.Width < 0 {
			f.Width = 0
		}
		switch f.Node.Kind {
		case KindBox:
			e.allocateBox(f)
		case KindVBox:
			for _, c := range f.Children {
				if c.Node.Kind == KindAnchor {
					continue
				}
				c.Width = f.Width
			}
		}
		for i := len(f.Children) - 1; i >= 0; i-- {
			stack = append(stack, f.Children[i])
		}
	}
}

// allocateBox 拆分水平空间：先扣除非填充子项的必需宽度，剩余按比例
// 分给填充子项；没有填充子项时按均分与必需宽度取大者，允许溢出。
func (e *engine) allocateBox(f *Frame) {
	fillSum := 0.0
	required := 0.0
	count := 0
	for _, c := range f.Children {
		if c.Node.Kind == KindAnchor {
			continue
		}
		if c.fill > 0 {
			fillSum += c.fill
		} else {
			required += c.minW
			count++
		}
	}
	if fillSum > 0 {
		pool := f.Width - required
		if pool < 0 {
			pool = 0
		}
		for _, c := range f.Children {
			if c.Node.Kind == KindAnchor {
				continue
			}
			if c.fill > 0 {
				c.Width = pool * c.fill / fillSum
			} else {
				c.Width = c.minW
			}
		}
		return
	}
	if count == 0 {
		return
	}
	equal := f.Width / float64(count)
	for _, c := range f.Children {
		if c.Node.Kind == KindAnchor {
			continue
		}
		c.Width = math.Max(c.minW, equal)
	}
}

// degrade 把可用宽度耗尽的子树替换为 1px 占位。
func (e *engine) degrade(f *Frame) {
	e.warn(Warning{
		Code: WarnZeroAvailableWidth,
		Msg:  fmt.Sprintf("%s 可用宽度耗尽，降级为占位", f.Kind),
		Pos:  f.Node.Pos,
	})
	f.Width = 1
	f.placeholder = true
	f.Children = nil
	f.runs = nil
	f.tokens = nil
	f.Image = nil
}

// measureHeights 自底向上累计内容高度：文本折行，图像按已分配宽度
// 定比缩放（只缩小不放大），水平容器取最大，垂直容器求和。
func (e *engine) measureHeights(root *Frame) error {
	order := preOrder(root)
	for i := len(order) - 1; i >= 0; i-- {
		f := order[i]
		if f.placeholder {
			f.content = 1
			continue
		}
		switch f.Node.Kind {
		case KindText, KindLink, KindInline:
			if err := e.wrapFrame(f); err != nil {
				return err
			}
		case KindRef:
			if f.Image == nil {
				if err := e.wrapFrame(f); err != nil {
					return err
				}
				break
			}
			drawn := math.Min(f.Image.Width, f.Width)
			if f.Image.Width > 0 {
				f.Image.Height = drawn * (f.Image.Height / f.Image.Width)
			}
			f.Image.Width = drawn
			f.content = f.Image.Height
		case KindBox:
			for _, c := range f.Children {
				f.content = math.Max(f.content, c.content)
			}
		case KindVBox:
			for _, c := range f.Children {
				f.content += c.content
			}
		}
	}
	return nil
}

// wrapFrame 在框架宽度内折行并累计内容高度。
func (e *engine) wrapFrame(f *Frame) error {
	avail := f.Width
	if avail <= 0 {
		avail = math.Inf(1)
	}
	lines, err := wrapTokens(f.tokens, avail, f.runs, e.m)
	if err != nil {
		return err
	}
	f.Lines = lines
	for _, line := range lines {
		f.content += line.Height
	}
	return nil
}

// position 自顶向下定位并下发高度约束：水平容器把子项拉伸到自身高度，
// 垂直容器把多余空间按填充比例分给子项。内容高度从不回写祖先，
// 约束下发也不改变容器自身的高度。
func (e *engine) position(root *Frame) {
	root.Height = root.content
	stack := []*Frame{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range f.anchorNames {
			if _, ok := e.res.Anchors[name]; !ok {
				e.res.Anchors[name] = f.Y
			}
		}
		e.collectLinks(f)
		switch f.Node.Kind {
		case KindBox:
			x := f.X
			for _, c := range f.Children {
				c.X = x
				c.Y = f.Y
				switch {
				case c.Node.Kind == KindAnchor:
					c.Height = 0
				case c.placeholder:
					c.Height = c.content
				default:
					c.Height = f.Height
				}
				x += c.Width
			}
		case KindVBox:
			slack := f.Height - f.content
			fillSum := 0.0
			for _, c := range f.Children {
				if !c.placeholder {
					fillSum += c.fill
				}
			}
			y := f.Y
			for _, c := range f.Children {
				c.X = f.X
				c.Y = y
				h := c.content
				if slack > 0 && fillSum > 0 && c.fill > 0 && !c.placeholder {
					h += slack * c.fill / fillSum
				}
				c.Height = h
				y += h
			}
		}
		for i := len(f.Children) - 1; i >= 0; i-- {
			stack = append(stack, f.Children[i])
		}
	}
}

// collectLinks 按文档顺序记录链接：独立链接框取节点文本，
// 行内链接逐个运行记录。
func (e *engine) collectLinks(f *Frame) {
	switch f.Node.Kind {
	case KindLink:
		e.res.Links = append(e.res.Links, Link{URL: f.Node.URL, Text: f.Node.Text, Frame: f})
	case KindInline:
		for _, run := range f.runs {
			if run.url != "" {
				e.res.Links = append(e.res.Links, Link{URL: run.url, Text: run.text, Frame: f})
			}
		}
	}
}
