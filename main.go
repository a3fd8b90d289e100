package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/vellum/layout"
	"github.com/ByLCY/vellum/markup"
	"github.com/ByLCY/vellum/objects"
	"github.com/ByLCY/vellum/renderer"
	canvasrenderer "github.com/ByLCY/vellum/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/home.vml", "页面标记文件路径")
	output := flag.String("out", "", "输出路径；默认与输入同名、后缀 .png，.pdf 后缀改为输出 PDF")
	objectDir := flag.String("objects", "", "二进制对象目录，文件以去掉扩展名的名字被页面引用")
	width := flag.Float64("width", 800, "视口宽度（像素）")
	height := flag.Float64("height", 600, "视口高度（像素）")
	dpi := flag.Float64("dpi", layout.DefaultDPI, "渲染 DPI")
	debugPath := flag.String("debug", "", "布局调试 JSON 输出路径")
	printTree := flag.Bool("tree", false, "在标准输出打印框架树")
	verbose := flag.Bool("v", false, "打开调试级别跟踪")
	flag.Parse()

	if *verbose {
		tracing.Select("vellum.markup").SetTraceLevel(tracing.LevelDebug)
		tracing.Select("vellum.layout").SetTraceLevel(tracing.LevelDebug)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(*input, filepath.Ext(*input)) + ".png"
	}
	format := canvasrenderer.FormatPNG
	if strings.EqualFold(filepath.Ext(out), ".pdf") {
		format = canvasrenderer.FormatPDF
	}

	objs, err := loadObjects(*objectDir)
	if err != nil {
		log.Fatalf("读取对象目录失败: %v", err)
	}

	opts := layout.Options{
		ViewportWidth:  *width,
		ViewportHeight: *height,
		DPI:            *dpi,
		Objects:        objs,
	}
	var r renderer.Renderer = canvasrenderer.New(format, objs)
	if err := run(*input, out, *debugPath, opts, *printTree, r); err != nil {
		log.Fatalf("生成页面失败: %v", err)
	}
	fmt.Printf("已生成页面：%s\n", out)
}

func loadObjects(dir string) (*objects.Set, error) {
	if dir == "" {
		return nil, nil
	}
	return objects.FromDir(dir)
}

// run 串联解析、构建、布局与渲染。
func run(inputPath, outputPath, debugPath string, opts layout.Options, printTree bool, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开页面文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	page, err := markup.Parse(file)
	if err != nil {
		return fmt.Errorf("解析页面标记失败: %w", err)
	}

	table := layout.BuildStyleTable(page)
	doc, err := layout.BuildDocument(page, table)
	if err != nil {
		return fmt.Errorf("构建文档失败: %w", err)
	}

	if shaper, ok := r.(layout.Shaper); ok {
		opts.Shaper = shaper
	}
	result, err := layout.Layout(doc, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "警告: %s\n", w)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}
	if printTree {
		fmt.Print(layout.TreeString(result))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	data, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if dir := filepath.Dir(debugPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
