package layout

import (
	"math"
	"unicode"
)

// 该文件实现逐词贪心折行。样式运行先切分为不可断单元：以空白分隔的词、
// 单个全角字符；无空白紧邻的相邻运行拼入同一单元。行内的连续同运行
// 文字再合并回 Span。

// styledRun 是折行的输入：一段样式一致的文字，链接运行带目标 URL。
type styledRun struct {
	text  string
	style Style
	url   string
}

// fragment 是单元内属于同一运行的连续文字。
type fragment struct {
	text  string
	run   int
	width float64
}

// wrapToken 要么是不可断单元（frags 非空），要么是可断空白。
type wrapToken struct {
	gap   bool
	run   int // 空白所属运行
	frags []fragment
	width float64
}

// measurer 包装排版协作方，附带按样式缓存的纵向度量。
type measurer struct {
	shaper  Shaper
	dpi     float64
	metrics map[Style]Metrics
}

func newMeasurer(shaper Shaper, dpi float64) *measurer {
	return &measurer{shaper: shaper, dpi: dpi, metrics: map[Style]Metrics{}}
}

func (m *measurer) width(text string, style Style) (float64, error) {
	return m.shaper.MeasureWidth(text, style, m.dpi)
}

func (m *measurer) lineMetrics(style Style) (Metrics, error) {
	if cached, ok := m.metrics[style]; ok {
		return cached, nil
	}
	met, err := m.shaper.Metrics(style, m.dpi)
	if err != nil {
		return Metrics{}, err
	}
	m.metrics[style] = met
	return met, nil
}

// isWide 判断是否按单字成词处理的全角字符。
func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
}

// tokenize 把运行序列切成单元与空白的交替序列。连续空白折叠为一个，
// 首尾空白丢弃。
func tokenize(runs []styledRun, m *measurer) ([]wrapToken, error) {
	var tokens []wrapToken
	var frags []fragment
	unitW := 0.0
	var cur []rune
	curRun := -1
	pendingGap := -1

	flushFrag := func() error {
		if len(cur) == 0 {
			return nil
		}
		text := string(cur)
		w, err := m.width(text, runs[curRun].style)
		if err != nil {
			return err
		}
		frags = append(frags, fragment{text: text, run: curRun, width: w})
		unitW += w
		cur = cur[:0]
		return nil
	}
	flushUnit := func() error {
		if err := flushFrag(); err != nil {
			return err
		}
		if len(frags) == 0 {
			return nil
		}
		if pendingGap >= 0 {
			w, err := m.width(" ", runs[pendingGap].style)
			if err != nil {
				return err
			}
			tokens = append(tokens, wrapToken{gap: true, run: pendingGap, width: w})
			pendingGap = -1
		}
		tokens = append(tokens, wrapToken{frags: frags, width: unitW})
		frags = nil
		unitW = 0
		return nil
	}

	for i, run := range runs {
		for _, r := range run.text {
			switch {
			case unicode.IsSpace(r):
				if err := flushUnit(); err != nil {
					return nil, err
				}
				if len(tokens) > 0 && pendingGap < 0 {
					pendingGap = i
				}
			case isWide(r):
				if err := flushUnit(); err != nil {
					return nil, err
				}
				w, err := m.width(string(r), run.style)
				if err != nil {
					return nil, err
				}
				frags = []fragment{{text: string(r), run: i, width: w}}
				unitW = w
				if err := flushUnit(); err != nil {
					return nil, err
				}
			default:
				if curRun != i {
					if err := flushFrag(); err != nil {
						return nil, err
					}
					curRun = i
				}
				cur = append(cur, r)
			}
		}
		if len(cur) > 0 {
			if err := flushFrag(); err != nil {
				return nil, err
			}
		}
	}
	if err := flushUnit(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// longestUnit 返回最宽的不可断单元宽度，作为文本节点的最小内容宽度。
func longestUnit(tokens []wrapToken) float64 {
	max := 0.0
	for _, t := range tokens {
		if !t.gap && t.width > max {
			max = t.width
		}
	}
	return max
}

// wrapTokens 把单元序列贪心填入行宽。available 为 +Inf 时不折行。
// 超宽单元按字符强拆，任何字符至少独占一行以保证推进。
func wrapTokens(tokens []wrapToken, available float64, runs []styledRun, m *measurer) ([]TextLine, error) {
	var lines []TextLine
	var cur []wrapToken
	curW := 0.0
	gapIdx := -1 // cur 内待定的行尾空白下标

	flushLine := func() error {
		if gapIdx == len(cur)-1 && gapIdx >= 0 {
			curW -= cur[gapIdx].width
			cur = cur[:gapIdx]
		}
		if len(cur) == 0 {
			return nil
		}
		line, err := assembleLine(cur, curW, runs, m)
		if err != nil {
			return err
		}
		lines = append(lines, line)
		cur = nil
		curW = 0
		gapIdx = -1
		return nil
	}

	for _, t := range tokens {
		if t.gap {
			if len(cur) == 0 {
				continue
			}
			cur = append(cur, t)
			gapIdx = len(cur) - 1
			curW += t.width
			continue
		}
		if curW+t.width > available && len(cur) > 0 {
			if err := flushLine(); err != nil {
				return nil, err
			}
		}
		if t.width > available && len(cur) == 0 {
			pieces := splitUnit(t, available)
			for _, p := range pieces[:len(pieces)-1] {
				cur = []wrapToken{p}
				curW = p.width
				if err := flushLine(); err != nil {
					return nil, err
				}
			}
			last := pieces[len(pieces)-1]
			cur = append(cur, last)
			curW += last.width
			continue
		}
		cur = append(cur, t)
		curW += t.width
	}
	if err := flushLine(); err != nil {
		return nil, err
	}
	return lines, nil
}

// splitUnit 把超宽单元按字符切成若干不超宽的片段，
// 单字符超宽时仍独立成片。
func splitUnit(t wrapToken, available float64) []wrapToken {
	var pieces []wrapToken
	var frags []fragment
	w := 0.0
	flush := func() {
		if len(frags) > 0 {
			pieces = append(pieces, wrapToken{frags: frags, width: w})
			frags = nil
			w = 0
		}
	}
	for _, f := range t.frags {
		runes := []rune(f.text)
		if len(runes) == 0 {
			continue
		}
		per := f.width / float64(len(runes))
		var cur []rune
		curW := 0.0
		for _, r := range runes {
			if w+curW+per > available && (len(cur) > 0 || len(frags) > 0) {
				if len(cur) > 0 {
					frags = append(frags, fragment{text: string(cur), run: f.run, width: curW})
					w += curW
					cur = nil
					curW = 0
				}
				flush()
			}
			cur = append(cur, r)
			curW += per
		}
		if len(cur) > 0 {
			frags = append(frags, fragment{text: string(cur), run: f.run, width: curW})
			w += curW
		}
	}
	flush()
	if len(pieces) == 0 {
		pieces = append(pieces, t)
	}
	return pieces
}

// assembleLine 把一行的单元按运行合并为 Span，行高取各片段度量的最大值。
func assembleLine(tokens []wrapToken, width float64, runs []styledRun, m *measurer) (TextLine, error) {
	line := TextLine{Width: width}
	var spans []Span
	add := func(text string, run int, w float64) {
		if len(spans) > 0 && sameRunSpan(&spans[len(spans)-1], runs[run]) {
			spans[len(spans)-1].Text += text
			spans[len(spans)-1].Width += w
			return
		}
		spans = append(spans, Span{
			Text:  text,
			Style: runs[run].style,
			Width: w,
			URL:   runs[run].url,
		})
	}
	for _, t := range tokens {
		if t.gap {
			add(" ", t.run, t.width)
			continue
		}
		for _, f := range t.frags {
			add(f.text, f.run, f.width)
		}
	}
	line.Spans = spans
	for _, span := range spans {
		met, err := m.lineMetrics(span.Style)
		if err != nil {
			return TextLine{}, err
		}
		line.Height = math.Max(line.Height, met.LineHeight)
		line.Ascent = math.Max(line.Ascent, met.Ascent)
	}
	return line, nil
}

func sameRunSpan(s *Span, run styledRun) bool {
	return styleEq(s.Style, run.style) && s.URL == run.url
}
