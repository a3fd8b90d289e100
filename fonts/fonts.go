/*
Package fonts 定位渲染所需的字体文件。按字族与字重列出常见开源字体的
候选文件名（DejaVu、Liberation、Noto），在系统字体目录中查找并读取。
*/
package fonts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Kind 枚举三类字族。
type Kind int

const (
	Sans Kind = iota
	Serif
	Mono
)

func (k Kind) String() string {
	switch k {
	case Serif:
		return "serif"
	case Mono:
		return "mono"
	}
	return "sans"
}

// dirs 是各平台常见的字体安装目录。
var dirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"/Library/Fonts",
	"/System/Library/Fonts",
	`C:\Windows\Fonts`,
}

var (
	indexOnce sync.Once
	index     map[string]string // 文件名 → 完整路径
)

// fontIndex 扫描一次字体目录，建立文件名到路径的索引。
func fontIndex() map[string]string {
	indexOnce.Do(func() {
		index = map[string]string{}
		for _, dir := range dirs {
			filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d == nil || d.IsDir() {
					return nil
				}
				if _, ok := index[d.Name()]; !ok {
					index[d.Name()] = path
				}
				return nil
			})
		}
	})
	return index
}

// candidates 按优先级列出指定字族与字重的候选文件名。
func candidates(kind Kind, bold, italic bool) []string {
	dejavu := [...]string{"DejaVuSans", "DejaVuSerif", "DejaVuSansMono"}[kind]
	liberation := [...]string{"LiberationSans", "LiberationSerif", "LiberationMono"}[kind]
	noto := [...]string{"NotoSans", "NotoSerif", "NotoSansMono"}[kind]
	switch {
	case bold && italic:
		return []string{
			dejavu + "-BoldOblique.ttf",
			liberation + "-BoldItalic.ttf",
			noto + "-BoldItalic.ttf",
		}
	case bold:
		return []string{
			dejavu + "-Bold.ttf",
			liberation + "-Bold.ttf",
			noto + "-Bold.ttf",
		}
	case italic:
		return []string{
			dejavu + "-Oblique.ttf",
			liberation + "-Italic.ttf",
			noto + "-Italic.ttf",
		}
	}
	return []string{
		dejavu + ".ttf",
		liberation + "-Regular.ttf",
		noto + "-Regular.ttf",
	}
}

// Find 返回指定字族与字重的字体文件路径。精确字重缺失时回退同字族
// 常规字重，再缺失则报错。
func Find(kind Kind, bold, italic bool) (string, error) {
	if path, ok := locate(candidates(kind, bold, italic)); ok {
		return path, nil
	}
	if bold || italic {
		if path, ok := locate(candidates(kind, false, false)); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("未找到可用的 %s 字体", kind)
}

// Load 查找并读取字体文件的字节数据。
func Load(kind Kind, bold, italic bool) ([]byte, error) {
	path, err := Find(kind, bold, italic)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

func locate(names []string) (string, bool) {
	idx := fontIndex()
	for _, name := range names {
		if path, ok := idx[name]; ok {
			return path, true
		}
	}
	return "", false
}
