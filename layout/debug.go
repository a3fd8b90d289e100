package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xlab/treeprint"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// TreeString 返回框架树的文本概览，一行一个框架，便于快速核对布局。
func TreeString(res *Result) string {
	if res == nil || res.Root == nil {
		return ""
	}
	tp := treeprint.New()
	tp.SetValue(fmt.Sprintf("page %gx%g", res.Width, res.Height))
	type task struct {
		frame  *Frame
		branch treeprint.Tree
	}
	stack := []task{{frame: res.Root, branch: tp}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(t.frame.Children) == 0 {
			t.branch.AddNode(frameLabel(t.frame))
			continue
		}
		branch := t.branch.AddBranch(frameLabel(t.frame))
		for i := len(t.frame.Children) - 1; i >= 0; i-- {
			stack = append(stack, task{frame: t.frame.Children[i], branch: branch})
		}
	}
	return tp.String()
}

func frameLabel(f *Frame) string {
	label := fmt.Sprintf("%s %gx%g @(%g,%g)", f.Kind, f.Width, f.Height, f.X, f.Y)
	switch {
	case f.placeholder:
		label += " [占位]"
	case f.Image != nil:
		label += fmt.Sprintf(" &%s", f.Image.Name)
	case len(f.Lines) > 0 && len(f.Lines[0].Spans) > 0:
		label += fmt.Sprintf(" %q", clip(f.Lines[0].Spans[0].Text, 20))
	}
	return label
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
