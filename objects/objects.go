/*
Package objects 管理随页面带外下发的二进制对象。对象按名字索引，
图像对象在装载时即探测像素尺寸，此后集合只读，可被多个并发布局
安全共享。
*/
package objects

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dim 是图像对象的像素尺寸。
type Dim struct {
	Width  int
	Height int
}

// Set 是名字到二进制对象的只读映射。
type Set struct {
	blobs map[string][]byte
	dims  map[string]Dim
}

// NewSet 从名字到字节的映射构建对象集。无法解码为图像的对象保留字节，
// 只是没有尺寸信息。
func NewSet(blobs map[string][]byte) *Set {
	s := &Set{blobs: map[string][]byte{}, dims: map[string]Dim{}}
	for name, data := range blobs {
		s.blobs[name] = data
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			s.dims[name] = Dim{Width: cfg.Width, Height: cfg.Height}
		}
	}
	return s
}

// FromDir 把目录下的常规文件装载为对象集，对象名取不含扩展名的文件名。
func FromDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	blobs := map[string][]byte{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("读取对象 %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		blobs[name] = data
	}
	return NewSet(blobs), nil
}

// Bytes 返回对象的原始字节。
func (s *Set) Bytes(name string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	data, ok := s.blobs[name]
	return data, ok
}

// Dim 返回图像对象的像素尺寸；对象缺失或不是已知图像格式时返回 false。
func (s *Set) Dim(name string) (Dim, bool) {
	if s == nil {
		return Dim{}, false
	}
	d, ok := s.dims[name]
	return d, ok
}

// Image 解码并返回对象图像。
func (s *Set) Image(name string) (image.Image, error) {
	data, ok := s.Bytes(name)
	if !ok {
		return nil, fmt.Errorf("对象 %q 不存在", name)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码对象 %q: %w", name, err)
	}
	return img, nil
}

// Names 返回全部对象名，按字典序排列。
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回对象数量。
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.blobs)
}
