package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件把文档树回写为规范化标记文本。样式一律内联为与该类节点默认样式
// 的差异，命名样式块不再出现；输出经解析与构建后与原文档结构相等。

// Markup 序列化文档为标记文本。
func (d *Document) Markup() string {
	var b strings.Builder
	for _, child := range d.Root.Children {
		writeNode(&b, child, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

type writeTask struct {
	node  *Node
	text  string // node 为空时的直接输出
	depth int
}

// writeNode 输出一个节点及其子树。容器换行缩进，叶子单行。
func writeNode(b *strings.Builder, root *Node, depth int) {
	stack := []writeTask{{node: root, depth: depth}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.node == nil {
			b.WriteString(t.text)
			continue
		}
		n := t.node
		pad := strings.Repeat("  ", t.depth)
		switch n.Kind {
		case KindText:
			b.WriteString(pad + "(")
			if mods := styleMods(n.Style, KindText); mods != "" {
				b.WriteString("{" + mods + "} ")
			}
			b.WriteString(quote(n.Text) + ")")
		case KindAnchor:
			b.WriteString(pad + "(# " + quote(n.Name) + ")")
		case KindLink:
			b.WriteString(pad + "(^ " + quote(n.URL))
			if mods := styleMods(n.Style, KindLink); mods != "" {
				b.WriteString(" {" + mods + "}")
			}
			if n.Text != n.URL {
				b.WriteString(" " + quote(n.Text))
			}
			b.WriteString(")")
		case KindRef:
			b.WriteString(pad + "(& " + quote(n.Name))
			if mods := styleMods(n.Style, KindRef); mods != "" {
				b.WriteString(" {" + mods + "}")
			}
			if n.Alt != "" {
				b.WriteString(" " + quote(n.Alt))
			}
			b.WriteString(")")
		case KindBox, KindVBox, KindInline:
			b.WriteString(pad + "(" + n.Kind.String())
			if mods := styleMods(n.Style, n.Kind); mods != "" {
				b.WriteString(" {" + mods + "}")
			}
			if len(n.Children) == 0 {
				b.WriteString(")")
				break
			}
			b.WriteString("\n")
			stack = append(stack, writeTask{text: pad + ")"})
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, writeTask{text: "\n"})
				stack = append(stack, writeTask{node: n.Children[i], depth: t.depth + 1})
			}
		}
	}
}

// styleMods 生成把 kind 的默认样式变换为 s 所需的修饰符序列。
// 标记语言的修饰符只增不减，而解析结果相对默认值也只会新增属性，
// 因此差异总能表达。
func styleMods(s Style, kind NodeKind) string {
	def := DefaultStyle(kind)
	var mods []string
	if s.Family != def.Family {
		mods = append(mods, s.Family.String())
	}
	if s.Weight == WeightBold && def.Weight != WeightBold {
		mods = append(mods, "bold")
	}
	for _, d := range []struct {
		flag Decoration
		name string
	}{
		{DecorItalic, "italic"},
		{DecorUnderline, "underline"},
		{DecorStrike, "strike"},
	} {
		if s.Decoration.Has(d.flag) && !def.Decoration.Has(d.flag) {
			mods = append(mods, d.name)
		}
	}
	if s.Foreground != def.Foreground {
		mods = append(mods, fmt.Sprintf("(fg %q)", hexColor(s.Foreground)))
	}
	if s.Background != nil {
		mods = append(mods, fmt.Sprintf("(bg %q)", hexColor(*s.Background)))
	}
	if s.Size != def.Size {
		mods = append(mods, fmt.Sprintf("(size %q)", formatNum(s.Size)))
	}
	if s.Fill != def.Fill {
		mods = append(mods, fmt.Sprintf("(fill %q)", formatNum(s.Fill)))
	}
	return strings.Join(mods, " ")
}

// quote 给文本加引号并转义反斜杠与引号。
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func hexColor(c Color) string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
