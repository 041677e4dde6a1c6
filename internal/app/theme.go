package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BoothTheme provides the booth's pink look on top of the default theme.
type BoothTheme struct{}

var _ fyne.Theme = (*BoothTheme)(nil)

func (t *BoothTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF} // pink-500
	case theme.ColorNameButton:
		return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xCC}
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0xFD, G: 0xF2, B: 0xF8, A: 0xFF} // pink-50
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0x83, G: 0x18, B: 0x43, A: 0xFF} // pink-900
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xF4, G: 0x72, B: 0xB6, A: 0x80}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *BoothTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BoothTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *BoothTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 15
	case theme.SizeNameHeadingText:
		return 34
	case theme.SizeNameInputRadius, theme.SizeNameSelectionRadius:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
