package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTreeString(t *testing.T) {
	res := layoutPage(t, `(box (vbox {(fill "1")} ("hello")) ("12345"))`, Options{})
	out := TreeString(res)
	for _, want := range []string{"page 800x600", "box", "vbox", `"hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("概览缺少 %q:\n%s", want, out)
		}
	}
	if TreeString(nil) != "" {
		t.Fatalf("空结果应得到空串")
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res := layoutPage(t, `({bold} "x")(# "top")`, Options{Debug: DebugOptions{Styles: true}})
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("输出调试 JSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}

	var decoded struct {
		Root *struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind  string `json:"kind"`
				Style *Style `json:"style"`
			} `json:"children"`
		} `json:"root"`
		Width   float64            `json:"width"`
		Anchors map[string]float64 `json:"anchors"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if decoded.Root == nil || decoded.Root.Kind != "vbox" {
		t.Fatalf("根框架类型不符: %+v", decoded.Root)
	}
	if decoded.Width != 800 {
		t.Fatalf("页面宽度不符: %g", decoded.Width)
	}
	if len(decoded.Root.Children) != 2 {
		t.Fatalf("子框架数不符: %d", len(decoded.Root.Children))
	}
	if decoded.Root.Children[0].Style == nil || !decoded.Root.Children[0].Style.Bold() {
		t.Fatalf("开启调试选项后应输出解析样式: %+v", decoded.Root.Children[0])
	}
	if _, ok := decoded.Anchors["top"]; !ok {
		t.Fatalf("锚点缺失: %v", decoded.Anchors)
	}

	// 默认不输出样式
	res = layoutPage(t, `({bold} "x")`, Options{})
	if res.Root.Children[0].Style != nil {
		t.Fatalf("未开启调试选项不应填充样式字段")
	}
}

func TestWriteDebugJSONNilResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.json")
	if err := WriteDebugJSON(nil, path); err != nil {
		t.Fatalf("空结果应直接返回: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("空结果不应产生文件")
	}
}
