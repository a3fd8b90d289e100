package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/vellum/markup"
)

// 该文件把原始标记树构建为带类型的文档树：按表头分派节点类型、校验
// 结构规则、合并相邻同样式文本。树的展开使用显式栈，深度不受调用栈限制。

// BuildError 表示原始树违反结构规则。结构错误无法局部恢复，
// 与语法错误同等对待：中止整个文档。
type BuildError struct {
	Pos lexer.Position
	Msg string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// BuildDocument 把解析后的页面构建为文档树。table 为空时就地建表。
// 可恢复问题（未知样式、重复锚点等）累计在 Document.Warnings，
// 受影响节点按既定回退处理。
func BuildDocument(page *markup.Page, table *StyleTable) (*Document, error) {
	if page == nil {
		return nil, fmt.Errorf("页面为空")
	}
	if table == nil {
		table = BuildStyleTable(page)
	}
	doc := &Document{Styles: table}
	b := &builder{
		res: &resolver{
			table: table,
			warn:  func(w Warning) { doc.Warnings = append(doc.Warnings, w) },
		},
		anchors: map[string]bool{},
	}

	root := &Node{Kind: KindVBox, Style: DefaultStyle(KindVBox)}
	if err := b.buildChildren(root, page.Items); err != nil {
		return nil, err
	}
	doc.Root = root
	tracer().Debugf("document built: %d top-level nodes, %d warnings",
		len(root.Children), len(doc.Warnings))
	return doc, nil
}

type builder struct {
	res     *resolver
	anchors map[string]bool
}

type buildTask struct {
	item   *markup.Item
	parent *Node
}

// buildChildren 用显式栈展开构建：节点就位后其子项入栈，
// 出栈顺序保持文档顺序。
func (b *builder) buildChildren(root *Node, items []*markup.Item) error {
	stack := make([]buildTask, 0, len(items))
	push := func(parent *Node, items []*markup.Item) {
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, buildTask{item: items[i], parent: parent})
		}
	}
	push(root, items)
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, children, err := b.buildNode(task.item)
		if err != nil {
			return err
		}
		if node == nil {
			continue // 被丢弃的重复锚点
		}
		appendChild(task.parent, node)
		if len(children) > 0 {
			push(node, children)
		}
	}
	return nil
}

// appendChild 追加子节点；相邻且样式完全一致的文本节点合并成一个文本运行。
func appendChild(parent *Node, node *Node) {
	if node.Kind == KindText && len(parent.Children) > 0 {
		last := parent.Children[len(parent.Children)-1]
		if last.Kind == KindText && styleEq(last.Style, node.Style) {
			last.Text += node.Text
			return
		}
	}
	parent.Children = append(parent.Children, node)
}

// buildNode 按表头构建单个节点，返回待展开的子项。被丢弃的节点返回 nil。
func (b *builder) buildNode(item *markup.Item) (*Node, []*markup.Item, error) {
	style, styleIdx, strs, children, err := splitParts(item)
	if err != nil {
		return nil, nil, err
	}
	var mods []*markup.Mod
	if style != nil {
		mods = style.Mods
	}

	switch item.Head {
	case "", "text":
		if err := requireStyleAt(item.Head, style, styleIdx, 0); err != nil {
			return nil, nil, err
		}
		if len(children) > 0 {
			return nil, nil, &BuildError{Pos: children[0].Pos, Msg: "文本列表内不允许嵌套子项"}
		}
		var text strings.Builder
		for _, s := range strs {
			text.WriteString(s.Value)
		}
		node := &Node{
			Kind:  KindText,
			Style: b.res.resolve(KindText, mods),
			Text:  text.String(),
			Pos:   item.Pos,
		}
		return node, nil, nil

	case "box", "vbox", "inline":
		if err := requireStyleAt(item.Head, style, styleIdx, 0); err != nil {
			return nil, nil, err
		}
		if len(strs) > 0 {
			return nil, nil, &BuildError{
				Pos: strs[0].Pos,
				Msg: fmt.Sprintf("%s 的内容必须是括号列表", item.Head),
			}
		}
		kind := KindBox
		switch item.Head {
		case "vbox":
			kind = KindVBox
		case "inline":
			kind = KindInline
		}
		if kind == KindInline {
			// 行内项只承载行流内容，容器与二进制引用在行流里没有定义
			for _, child := range children {
				switch child.Head {
				case "", "text", "inline", "^", "#":
				default:
					return nil, nil, &BuildError{
						Pos: child.Pos,
						Msg: fmt.Sprintf("inline 内不允许 %s 子项", child.Head),
					}
				}
			}
		}
		node := &Node{Kind: kind, Style: b.res.resolve(kind, mods), Pos: item.Pos}
		return node, children, nil

	case "&":
		if err := requireStyleAt("&", style, styleIdx, 1); err != nil {
			return nil, nil, err
		}
		if len(children) > 0 {
			return nil, nil, &BuildError{Pos: children[0].Pos, Msg: "二进制引用不接受子项"}
		}
		if len(strs) == 0 {
			return nil, nil, &BuildError{Pos: item.Pos, Msg: "二进制引用缺少对象名"}
		}
		if len(strs) > 2 {
			return nil, nil, &BuildError{Pos: strs[2].Pos, Msg: "二进制引用最多带一个替代文本"}
		}
		node := &Node{
			Kind:  KindRef,
			Style: b.res.resolve(KindRef, mods),
			Name:  strs[0].Value,
			Pos:   item.Pos,
		}
		if len(strs) == 2 {
			node.Alt = strs[1].Value
		}
		return node, nil, nil

	case "#":
		if style != nil {
			return nil, nil, &BuildError{Pos: style.Pos, Msg: "锚点不接受样式列表"}
		}
		if len(children) > 0 || len(strs) != 1 {
			return nil, nil, &BuildError{Pos: item.Pos, Msg: "锚点需要且仅需要一个名称字符串"}
		}
		name := strs[0].Value
		if b.anchors[name] {
			b.res.warn(Warning{
				Code: WarnDuplicateAnchor,
				Msg:  fmt.Sprintf("锚点 %q 重复，保留首次出现", name),
				Pos:  item.Pos,
			})
			return nil, nil, nil
		}
		b.anchors[name] = true
		return &Node{Kind: KindAnchor, Name: name, Pos: item.Pos}, nil, nil

	case "^":
		if err := requireStyleAt("^", style, styleIdx, 1); err != nil {
			return nil, nil, err
		}
		if len(children) > 0 {
			return nil, nil, &BuildError{Pos: children[0].Pos, Msg: "链接不接受子项"}
		}
		if len(strs) == 0 {
			return nil, nil, &BuildError{Pos: item.Pos, Msg: "链接缺少 URL"}
		}
		if len(strs) > 2 {
			return nil, nil, &BuildError{Pos: strs[2].Pos, Msg: "链接最多带一个展示文本"}
		}
		node := &Node{
			Kind:  KindLink,
			Style: b.res.resolve(KindLink, mods),
			URL:   strs[0].Value,
			Pos:   item.Pos,
		}
		// 缺省展示文本时直接显示 URL
		node.Text = node.URL
		if len(strs) == 2 {
			node.Text = strs[1].Value
		}
		return node, nil, nil
	}
	// 解析器已拒绝未知表头
	return nil, nil, &BuildError{Pos: item.Pos, Msg: fmt.Sprintf("未知表头 %q", item.Head)}
}

// splitParts 把项的组成部分分拣为样式列表、字符串与子项三组，
// 相对顺序保持。styleIdx 记录样式列表出现的部位，供各表头校验位置。
func splitParts(item *markup.Item) (*markup.StyleList, int, []*markup.Str, []*markup.Item, error) {
	var style *markup.StyleList
	styleIdx := -1
	var strs []*markup.Str
	var children []*markup.Item
	for i, part := range item.Parts {
		switch {
		case part.Style != nil:
			if style != nil {
				return nil, 0, nil, nil, &BuildError{Pos: part.Style.Pos, Msg: "一个项至多一个样式列表"}
			}
			style = part.Style
			styleIdx = i
		case part.Str != nil:
			strs = append(strs, part.Str)
		case part.Item != nil:
			children = append(children, part.Item)
		}
	}
	return style, styleIdx, strs, children, nil
}

// requireStyleAt 校验样式列表的位置：普通项紧跟表头，引用与链接
// 跟在首个字符串之后。
func requireStyleAt(head string, style *markup.StyleList, styleIdx, want int) error {
	if style == nil || styleIdx == want {
		return nil
	}
	what := head
	if what == "" {
		what = "text"
	}
	return &BuildError{
		Pos: style.Pos,
		Msg: fmt.Sprintf("%s 的样式列表位置不正确", what),
	}
}

// ReferencedNames 返回文档引用的全部二进制对象名，去重后按字典序排列。
// 传输层据此决定需要随页面下发哪些对象。
func (d *Document) ReferencedNames() []string {
	seen := map[string]bool{}
	stack := []*Node{d.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Kind == KindRef {
			seen[n.Name] = true
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal 比较两棵文档树的结构与样式，忽略来源位置。
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return equalNodes(d.Root, other.Root)
}

func equalNodes(a, b *Node) bool {
	type pair struct{ a, b *Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := p.a, p.b
		if x == nil || y == nil {
			if x != y {
				return false
			}
			continue
		}
		if x.Kind != y.Kind || x.Text != y.Text || x.Name != y.Name ||
			x.URL != y.URL || x.Alt != y.Alt {
			return false
		}
		if !styleEq(x.Style, y.Style) {
			return false
		}
		if len(x.Children) != len(y.Children) {
			return false
		}
		for i := range x.Children {
			stack = append(stack, pair{x.Children[i], y.Children[i]})
		}
	}
	return true
}
