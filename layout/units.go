package layout

// 长度换算。布局内部统一使用像素（px），字号以磅（pt）书写，
// 输出到物理单位后端（如 PDF）时再换算毫米。

const (
	// DefaultDPI 是未指定分辨率时采用的屏幕像素密度。
	DefaultDPI = 96.0

	// PtToMm 是磅到毫米的换算系数。
	PtToMm = 0.352777
	// MmToPt 是毫米到磅的换算系数。
	MmToPt = 1.0 / PtToMm
)

// PtToPx 把磅转换为指定 DPI 下的像素。
func PtToPx(pt, dpi float64) float64 {
	return pt * dpi / 72.0
}

// PxToPt 把像素转换为磅。
func PxToPt(px, dpi float64) float64 {
	return px * 72.0 / dpi
}

// PxToMm 把像素换算为毫米。
func PxToMm(px, dpi float64) float64 {
	return px / dpi * 25.4
}

// MmToPx 把毫米换算为像素。
func MmToPx(mm, dpi float64) float64 {
	return mm / 25.4 * dpi
}
