package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/vellum/markup"
)

// 该文件实现命名样式表与样式解析。解析按「内建默认 → 修饰符列表从左到右」
// 的顺序应用补丁，命名引用在原位展开，同一属性后写者胜。

// StyleTable 是页面级命名样式表：每个文档构建一份，此后只读，
// 由调用方显式传给构建与布局，不做任何进程级共享。
type StyleTable struct {
	defs  map[string][]*markup.Mod
	order []string
}

// BuildStyleTable 从页面开头的样式块建表。重名定义后者覆盖前者。
func BuildStyleTable(page *markup.Page) *StyleTable {
	t := &StyleTable{defs: map[string][]*markup.Mod{}}
	if page == nil || page.Styles == nil {
		return t
	}
	for _, def := range page.Styles.Defs {
		if _, ok := t.defs[def.Name]; !ok {
			t.order = append(t.order, def.Name)
		}
		t.defs[def.Name] = def.Mods
	}
	return t
}

// Lookup 返回名字对应的修饰符列表。
func (t *StyleTable) Lookup(name string) ([]*markup.Mod, bool) {
	mods, ok := t.defs[name]
	return mods, ok
}

// Names 按定义顺序返回全部样式名。
func (t *StyleTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len 返回表内样式数。
func (t *StyleTable) Len() int {
	return len(t.defs)
}

// DefaultStyle 返回节点类型的内建默认样式。链接默认带下划线与强调色。
func DefaultStyle(kind NodeKind) Style {
	s := Style{
		Family:     FamilySans,
		Foreground: Color{R: 0x1E, G: 0x1E, B: 0x1E},
		Size:       12,
	}
	if kind == KindLink {
		s.Decoration = DecorUnderline
		s.Foreground = Color{R: 0x0F, G: 0x62, B: 0xFE}
	}
	return s
}

// resolver 在一次文档构建中携带样式表与警告回调。
type resolver struct {
	table *StyleTable
	warn  func(Warning)
}

// resolve 把修饰符列表应用到 kind 的默认样式上。
func (r *resolver) resolve(kind NodeKind, mods []*markup.Mod) Style {
	style := DefaultStyle(kind)
	r.applyAll(&style, mods, nil)
	return style
}

// applyAll 顺序应用修饰符。visiting 是命名引用的展开路径，用于环检测。
func (r *resolver) applyAll(style *Style, mods []*markup.Mod, visiting map[string]bool) {
	for _, mod := range mods {
		r.apply(style, mod, visiting)
	}
}

func (r *resolver) apply(style *Style, mod *markup.Mod, visiting map[string]bool) {
	name := mod.Name()
	if arg, ok := mod.Arg(); ok {
		r.applyArg(style, mod, name, arg)
		return
	}
	switch name {
	case "serif":
		style.Family = FamilySerif
	case "sans":
		style.Family = FamilySans
	case "mono":
		style.Family = FamilyMono
	case "bold":
		style.Weight = WeightBold
	case "italic":
		style.Decoration |= DecorItalic
	case "underline":
		style.Decoration |= DecorUnderline
	case "strike":
		style.Decoration |= DecorStrike
	default:
		r.applyNamed(style, mod, name, visiting)
	}
}

func (r *resolver) applyArg(style *Style, mod *markup.Mod, name, arg string) {
	switch name {
	case "fg":
		c, ok := parseColor(arg)
		if !ok {
			r.warnArg(mod, name, arg)
			return
		}
		style.Foreground = c
	case "bg":
		c, ok := parseColor(arg)
		if !ok {
			r.warnArg(mod, name, arg)
			return
		}
		bg := c
		style.Background = &bg
	case "size":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v <= 0 {
			r.warnArg(mod, name, arg)
			return
		}
		style.Size = v
	case "fill":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			r.warnArg(mod, name, arg)
			return
		}
		// 负值保留原样，由布局阶段报 invalid-fill-ratio 并降级
		style.Fill = v
	default:
		r.warn(Warning{
			Code: WarnUnknownStyleReference,
			Msg:  fmt.Sprintf("未知样式引用 %q", name),
			Pos:  mod.Position(),
		})
	}
}

// applyNamed 在原位展开命名样式。引用缺失或成环时跳过该引用，
// 其余修饰符继续生效。
func (r *resolver) applyNamed(style *Style, mod *markup.Mod, name string, visiting map[string]bool) {
	mods, ok := r.table.Lookup(name)
	if !ok {
		r.warn(Warning{
			Code: WarnUnknownStyleReference,
			Msg:  fmt.Sprintf("未知样式引用 %q", name),
			Pos:  mod.Position(),
		})
		return
	}
	if visiting == nil {
		visiting = map[string]bool{}
	}
	if visiting[name] {
		r.warn(Warning{
			Code: WarnRecursiveStyle,
			Msg:  fmt.Sprintf("命名样式 %q 存在循环引用", name),
			Pos:  mod.Position(),
		})
		return
	}
	visiting[name] = true
	r.applyAll(style, mods, visiting)
	delete(visiting, name)
}

func (r *resolver) warnArg(mod *markup.Mod, name, arg string) {
	r.warn(Warning{
		Code: WarnInvalidStyleArgument,
		Msg:  fmt.Sprintf("修饰符 %s 的参数 %q 无效", name, arg),
		Pos:  mod.Position(),
	})
}

// parseColor 解析 RGB 或 RRGGBB 十六进制颜色，允许 # 前缀。
func parseColor(value string) (Color, bool) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: int(n >> 16 & 0xFF),
		G: int(n >> 8 & 0xFF),
		B: int(n & 0xFF),
	}, true
}
