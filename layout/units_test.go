package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%g back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestPxConversionBaselines 覆盖像素换算的基准值：96 DPI 下 1 英寸
// 同时等于 72pt、96px 与 25.4mm。
func TestPxConversionBaselines(t *testing.T) {
	if got := PtToPx(72, 96); math.Abs(got-96) > 1e-9 {
		t.Fatalf("72pt 在 96DPI 下期望 96px，实际 %g", got)
	}
	if got := PxToPt(96, 96); math.Abs(got-72) > 1e-9 {
		t.Fatalf("96px 在 96DPI 下期望 72pt，实际 %g", got)
	}
	if got := PxToMm(96, 96); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("96px 在 96DPI 下期望 25.4mm，实际 %g", got)
	}
	if got := MmToPx(25.4, 96); math.Abs(got-96) > 1e-9 {
		t.Fatalf("25.4mm 在 96DPI 下期望 96px，实际 %g", got)
	}
	// DPI 翻倍像素同步翻倍
	if got := PtToPx(12, 192); math.Abs(got-32) > 1e-9 {
		t.Fatalf("12pt 在 192DPI 下期望 32px，实际 %g", got)
	}
}

// TestPxRoundTrip 验证 px↔mm 与 px↔pt 在多种 DPI 下的往返精度。
func TestPxRoundTrip(t *testing.T) {
	for _, dpi := range []float64{72, 96, 144, 300} {
		for _, px := range []float64{0, 1, 12.5, 800, 4096} {
			if back := MmToPx(PxToMm(px, dpi), dpi); math.Abs(back-px) > 1e-9 {
				t.Fatalf("px→mm→px 往返误差过大: dpi=%g in=%g back=%g", dpi, px, back)
			}
			if back := PtToPx(PxToPt(px, dpi), dpi); math.Abs(back-px) > 1e-9 {
				t.Fatalf("px→pt→px 往返误差过大: dpi=%g in=%g back=%g", dpi, px, back)
			}
		}
	}
}
