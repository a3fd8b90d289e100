package layout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// LayoutEach 并发布局多份独立文档，结果切片与输入一一对应。任一文档
// 失败会取消其余任务并返回首个错误。各文档自带样式表且布局期间只读，
// 没有共享可变状态；同一份文档出现多次（例如多个候选视口的重排）
// 也是安全的。
func LayoutEach(ctx context.Context, docs []*Document, opts Options) ([]*Result, error) {
	results := make([]*Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := Layout(doc, opts)
			if err != nil {
				return fmt.Errorf("文档 %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
