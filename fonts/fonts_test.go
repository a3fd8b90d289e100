package fonts

import (
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	if Sans.String() != "sans" || Serif.String() != "serif" || Mono.String() != "mono" {
		t.Fatalf("字族名不符")
	}
}

func TestCandidates(t *testing.T) {
	regular := candidates(Sans, false, false)
	if regular[0] != "DejaVuSans.ttf" || regular[1] != "LiberationSans-Regular.ttf" {
		t.Fatalf("常规候选顺序不符: %v", regular)
	}
	bold := candidates(Serif, true, false)
	if bold[0] != "DejaVuSerif-Bold.ttf" || bold[1] != "LiberationSerif-Bold.ttf" {
		t.Fatalf("粗体候选不符: %v", bold)
	}
	italic := candidates(Sans, false, true)
	if italic[0] != "DejaVuSans-Oblique.ttf" || italic[1] != "LiberationSans-Italic.ttf" {
		t.Fatalf("斜体候选不符: %v", italic)
	}
	boldItalic := candidates(Mono, true, true)
	if boldItalic[0] != "DejaVuSansMono-BoldOblique.ttf" {
		t.Fatalf("粗斜体候选不符: %v", boldItalic)
	}
	for _, names := range [][]string{regular, bold, italic, boldItalic} {
		for _, n := range names {
			if !strings.HasSuffix(n, ".ttf") {
				t.Fatalf("候选文件名应为 ttf: %s", n)
			}
		}
	}
}

func TestFindAndLoad(t *testing.T) {
	path, err := Find(Sans, false, false)
	if err != nil {
		t.Skipf("系统无可用字体: %v", err)
	}
	if path == "" {
		t.Fatalf("路径为空")
	}
	data, err := Load(Sans, false, false)
	if err != nil {
		t.Fatalf("读取字体失败: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("字体数据为空")
	}
	// 粗体至少能回退到常规字重
	if _, err := Load(Sans, true, false); err != nil {
		t.Fatalf("粗体查找未回退: %v", err)
	}
}
