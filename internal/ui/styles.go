package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A")
	ColorWarning   = lipgloss.Color("#FFB800")
	ColorError     = lipgloss.Color("#FF4444")
	ColorInfo      = lipgloss.Color("#4EA8DE")
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorChain     = lipgloss.Color("#9B5DE5") // network names, titles
	ColorHighlight = lipgloss.Color("#F15BB5") // focused controls
)

// Base styles used by plain CLI output.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)
)

// Theme is the palette the mint card renders with. It is passed to the
// model explicitly so callers (and tests) can swap it.
type Theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Address lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Focus   lipgloss.Color
}

// DefaultTheme returns the palette used by the CLI.
func DefaultTheme() Theme {
	return Theme{
		Accent:  ColorChain,
		Success: ColorSuccess,
		Warning: ColorWarning,
		Error:   ColorError,
		Info:    ColorInfo,
		Address: ColorAddress,
		Text:    ColorValue,
		Muted:   ColorMeta,
		Border:  ColorBorder,
		Focus:   ColorHighlight,
	}
}

func (t Theme) card() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2)
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) badge() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(t.Accent).
		Bold(true).
		Padding(0, 1)
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

func (t Theme) text() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) address() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Address)
}

func (t Theme) button(focused, enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	switch {
	case !enabled:
		return s.Foreground(t.Muted).BorderForeground(t.Muted)
	case focused:
		return s.Foreground(t.Focus).BorderForeground(t.Focus).Bold(true)
	default:
		return s.Foreground(t.Text).BorderForeground(t.Border)
	}
}

func (t Theme) level(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// Banner returns the w3mint banner.
func Banner() string {
	art := `
  ██╗    ██╗██████╗ ███╗   ███╗██╗███╗   ██╗████████╗
  ██║    ██║╚════██╗████╗ ████║██║████╗  ██║╚══██╔══╝
  ██║ █╗ ██║ █████╔╝██╔████╔██║██║██╔██╗ ██║   ██║
  ██║███╗██║ ╚═══██╗██║╚██╔╝██║██║██║╚██╗██║   ██║
  ╚███╔███╔╝██████╔╝██║ ╚═╝ ██║██║██║ ╚████║   ██║
   ╚══╝╚══╝ ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝   ╚═╝`

	tagline := StyleMeta.Render("     Claim NFT drops from the terminal")
	return StyleChain.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for the next command to run.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a network name.
func ChainName(c string) string { return StyleChain.Render(c) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
