package layout

import (
	"encoding/json"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// WarningCode 区分可恢复降级的种类。致命问题（语法、结构）走 error，
// 不在此列。
type WarningCode int

const (
	WarnUnknownStyleReference WarningCode = iota
	WarnRecursiveStyle
	WarnInvalidStyleArgument
	WarnDuplicateAnchor
	WarnUnresolvedBinaryReference
	WarnInvalidFillRatio
	WarnZeroAvailableWidth
)

func (c WarningCode) String() string {
	switch c {
	case WarnUnknownStyleReference:
		return "unknown-style-reference"
	case WarnRecursiveStyle:
		return "recursive-style"
	case WarnInvalidStyleArgument:
		return "invalid-style-argument"
	case WarnDuplicateAnchor:
		return "duplicate-anchor"
	case WarnUnresolvedBinaryReference:
		return "unresolved-binary-reference"
	case WarnInvalidFillRatio:
		return "invalid-fill-ratio"
	case WarnZeroAvailableWidth:
		return "zero-available-width"
	}
	return "unknown"
}

// MarshalJSON 以可读名称输出警告码。
func (c WarningCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Warning 描述一次局部降级：受影响节点按既定回退处理，文档整体继续。
// 警告随布局结果一并返回，由调用方决定如何呈现。
type Warning struct {
	Code WarningCode    `json:"code"`
	Msg  string         `json:"msg"`
	Pos  lexer.Position `json:"-"`
}

func (w Warning) String() string {
	if w.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", w.Pos.Line, w.Pos.Column, w.Code, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Msg)
}
