package layout

import (
	"context"
	"testing"
)

func TestLayoutEach(t *testing.T) {
	srcs := []string{
		`("solo")`,
		`(box (vbox {(fill "1")} ("a")) ("bb"))`,
		`(vbox ("x") (^ "vellum://y" "y"))`,
	}
	docs := make([]*Document, len(srcs))
	for i, s := range srcs {
		docs[i] = mustBuild(t, s)
	}
	opts := Options{ViewportWidth: 800, ViewportHeight: 600, Shaper: stubShaper{}}

	results, err := LayoutEach(context.Background(), docs, opts)
	if err != nil {
		t.Fatalf("并行布局失败: %v", err)
	}
	if len(results) != len(docs) {
		t.Fatalf("结果数不符: %d", len(results))
	}
	for i, doc := range docs {
		want, err := Layout(doc, opts)
		if err != nil {
			t.Fatalf("单独布局失败: %v", err)
		}
		got := results[i]
		if got == nil || !almost(got.Width, want.Width) || !almost(got.Height, want.Height) {
			t.Fatalf("第 %d 个结果与单独布局不一致", i)
		}
		if len(got.Root.Children) != len(want.Root.Children) {
			t.Fatalf("第 %d 个结果结构不一致", i)
		}
		if len(got.Links) != len(want.Links) {
			t.Fatalf("第 %d 个结果链接不一致", i)
		}
	}
}

func TestLayoutEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []*Document{mustBuild(t, `("x")`)}
	if _, err := LayoutEach(ctx, docs, Options{ViewportWidth: 800, Shaper: stubShaper{}}); err == nil {
		t.Fatalf("已取消的上下文应返回错误")
	}
}

func TestLayoutEachSharedDocument(t *testing.T) {
	// 同一文档在多个任务间共享布局，文档与样式表保持只读
	doc := mustBuild(t, `(box (vbox {(fill "1")} ("a")) ("bb"))`)
	docs := make([]*Document, 16)
	for i := range docs {
		docs[i] = doc
	}
	results, err := LayoutEach(context.Background(), docs, Options{ViewportWidth: 800, Shaper: stubShaper{}})
	if err != nil {
		t.Fatalf("共享文档并行布局失败: %v", err)
	}
	for i, r := range results {
		if !almost(r.Root.Children[0].Children[0].Width, 780) {
			t.Fatalf("第 %d 个结果填充宽度不符: %g", i, r.Root.Children[0].Children[0].Width)
		}
	}
}
