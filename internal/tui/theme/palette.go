package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Available   lipgloss.Color
	Booked      lipgloss.Color
	Marked      lipgloss.Color
	Warning     lipgloss.Color

	// Cell backgrounds.
	AvailableBg     lipgloss.Color
	BookedBg        lipgloss.Color
	MarkedBg        lipgloss.Color
	AvailablePastBg lipgloss.Color
	BookedPastBg    lipgloss.Color

	TextOnAccent    lipgloss.Color
	TextOnMarked    lipgloss.Color
	TextOnAvailable lipgloss.Color
	TextOnBooked    lipgloss.Color
	TextOnWarning   lipgloss.Color

	Light bool
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	light := isLightTheme(t.Bg)
	availableBg := cellBg(t.Available, t.Bg, light)
	bookedBg := cellBg(t.Booked, t.Bg, light)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Available:   lipgloss.Color(t.Available),
		Booked:      lipgloss.Color(t.Booked),
		Marked:      lipgloss.Color(t.Marked),
		Warning:     lipgloss.Color(t.Warning),

		AvailableBg:     lipgloss.Color(availableBg),
		BookedBg:        lipgloss.Color(bookedBg),
		MarkedBg:        lipgloss.Color(t.Marked),
		AvailablePastBg: lipgloss.Color(pastBg(t.Available, t.Bg, light)),
		BookedPastBg:    lipgloss.Color(pastBg(t.Booked, t.Bg, light)),

		TextOnAccent:    lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnMarked:    lipgloss.Color(chooseTextColor(t.Marked, t.Bg, t.Fg)),
		TextOnAvailable: lipgloss.Color(chooseTextColor(availableBg, t.Bg, t.Fg)),
		TextOnBooked:    lipgloss.Color(chooseTextColor(bookedBg, t.Bg, t.Fg)),
		TextOnWarning:   lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),

		Light: light,
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func cellBg(accent, bg string, light bool) string {
	if light {
		return blendColors(accent, bg, 0.75)
	}
	return scaleColor(accent, 0.50, 40)
}

func pastBg(accent, bg string, light bool) string {
	if light {
		return blendColors(accent, bg, 0.88)
	}
	return scaleColor(accent, 0.30, 30)
}

// scaleColor darkens a hex color by factor, keeping every channel at or
// above floor so it stays visible on dark backgrounds.
func scaleColor(hex string, factor float64, floor int) string {
	r, g, b, ok := parseColor(hex)
	if !ok {
		return hex
	}
	scale := func(c int) int {
		return max(int(float64(c)*factor), floor)
	}
	return formatHexColor(scale(r), scale(g), scale(b))
}

func parseColor(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	return parseHex(hex[1:3]), parseHex(hex[3:5]), parseHex(hex[5:7]), true
}

// parseHex parses a 2-character hex string.
func parseHex(s string) int {
	var val int
	for i := 0; i < len(s); i++ {
		val *= 16
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func formatHexColor(r, g, b int) string {
	const hex = "0123456789abcdef"
	return string([]byte{'#', hex[r>>4], hex[r&0xf], hex[g>>4], hex[g&0xf], hex[b>>4], hex[b&0xf]})
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := parseColor(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := parseColor(a)
	br, bg, bb, okB := parseColor(b)
	if !okA || !okB {
		return a
	}
	ratio = math.Min(math.Max(ratio, 0), 1)

	mix := func(x, y int) int {
		return int(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
