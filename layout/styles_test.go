package layout

import (
	"testing"

	"github.com/ByLCY/vellum/markup"
)

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyle(KindText)
	if s.Family != FamilySans || s.Size != 12 {
		t.Fatalf("文本默认样式不符: %+v", s)
	}
	if s.Foreground != (Color{R: 0x1E, G: 0x1E, B: 0x1E}) {
		t.Fatalf("默认前景色不符: %+v", s.Foreground)
	}
	if s.Background != nil || s.Fill != 0 {
		t.Fatalf("默认不应有背景与填充: %+v", s)
	}

	link := DefaultStyle(KindLink)
	if !link.Decoration.Has(DecorUnderline) {
		t.Fatalf("链接默认应带下划线")
	}
	if link.Foreground != (Color{R: 0x0F, G: 0x62, B: 0xFE}) {
		t.Fatalf("链接默认前景色不符: %+v", link.Foreground)
	}
}

func TestModifierPrecedence(t *testing.T) {
	// 修饰符从左到右应用，同一属性后写者胜，命名引用在原位展开
	doc := mustBuild(t, `
{ warn ((fg "FF0000")) }
({warn (fg "00FF00")} "text")
`)
	got := doc.Root.Children[0].Style.Foreground
	if got != (Color{G: 0xFF}) {
		t.Fatalf("后写的修饰符应当生效，得到 %+v", got)
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("不应有警告: %v", doc.Warnings)
	}
}

func TestNamedStyleExpansion(t *testing.T) {
	doc := mustBuild(t, `
{
  base   (bold (size "14"))
  strong (base (fg "112233") underline)
}
({strong} "x")
`)
	s := doc.Root.Children[0].Style
	if !s.Bold() || s.Size != 14 {
		t.Fatalf("嵌套命名样式未展开: %+v", s)
	}
	if s.Foreground != (Color{R: 0x11, G: 0x22, B: 0x33}) {
		t.Fatalf("展开后的前景色不符: %+v", s.Foreground)
	}
	if !s.Decoration.Has(DecorUnderline) {
		t.Fatalf("展开后的修饰不符: %+v", s)
	}
}

func TestUnknownStyleReference(t *testing.T) {
	doc := mustBuild(t, `({missing bold} "x")`)
	if len(doc.Warnings) != 1 || doc.Warnings[0].Code != WarnUnknownStyleReference {
		t.Fatalf("期望一条未知引用警告，得到 %v", doc.Warnings)
	}
	if !doc.Root.Children[0].Style.Bold() {
		t.Fatalf("未知引用之后的修饰符应继续生效")
	}
}

func TestRecursiveStyleReference(t *testing.T) {
	doc := mustBuild(t, `
{
  a (b (fg "FF0000"))
  b (a)
}
({a} "x")
`)
	if len(doc.Warnings) != 1 || doc.Warnings[0].Code != WarnRecursiveStyle {
		t.Fatalf("期望一条循环引用警告，得到 %v", doc.Warnings)
	}
	if doc.Root.Children[0].Style.Foreground != (Color{R: 0xFF}) {
		t.Fatalf("环外的修饰符应继续生效: %+v", doc.Root.Children[0].Style)
	}
}

func TestInvalidStyleArguments(t *testing.T) {
	doc := mustBuild(t, `({(fg "zzzzzz") (size "0") (fill "x")} "t")`)
	if len(doc.Warnings) != 3 {
		t.Fatalf("期望 3 条无效参数警告，得到 %v", doc.Warnings)
	}
	for _, w := range doc.Warnings {
		if w.Code != WarnInvalidStyleArgument {
			t.Fatalf("警告类别不符: %v", w)
		}
	}
	s := doc.Root.Children[0].Style
	if s.Size != 12 || s.Foreground != DefaultStyle(KindText).Foreground || s.Fill != 0 {
		t.Fatalf("无效参数不应改动样式: %+v", s)
	}
}

func TestNegativeFillKeptForLayout(t *testing.T) {
	// 负填充比例在构建阶段保留原值，由布局阶段报警并降级
	doc := mustBuild(t, `({(fill "-0.5")} "x")`)
	if len(doc.Warnings) != 0 {
		t.Fatalf("构建阶段不应报警: %v", doc.Warnings)
	}
	if doc.Root.Children[0].Style.Fill != -0.5 {
		t.Fatalf("负填充应原样保留: %+v", doc.Root.Children[0].Style)
	}
}

func TestStyleTableRedefinition(t *testing.T) {
	page, err := markup.ParseString(`
{
  a ((size "10"))
  b (bold)
  a ((size "18"))
}
`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	table := BuildStyleTable(page)
	if table.Len() != 2 {
		t.Fatalf("重名定义应合并: %d", table.Len())
	}
	names := table.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("样式名顺序不符: %v", names)
	}
	mods, ok := table.Lookup("a")
	if !ok {
		t.Fatalf("查表失败")
	}
	r := &resolver{table: table, warn: func(Warning) {}}
	if s := r.resolve(KindText, mods); s.Size != 18 {
		t.Fatalf("后出现的定义应覆盖前者: %+v", s)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"0F62FE", Color{R: 0x0F, G: 0x62, B: 0xFE}, true},
		{"#0F62FE", Color{R: 0x0F, G: 0x62, B: 0xFE}, true},
		{"fff", Color{R: 0xFF, G: 0xFF, B: 0xFF}, true},
		{"ABC", Color{R: 0xAA, G: 0xBB, B: 0xCC}, true},
		{"12345", Color{}, false},
		{"GGGGGG", Color{}, false},
		{"", Color{}, false},
	}
	for _, c := range cases {
		got, ok := parseColor(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("parseColor(%q) = %+v,%v", c.in, got, ok)
		}
	}
}
