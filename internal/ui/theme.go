package ui

import (
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                          string
	Title, Muted, Accent, Success, Error, Pending string
	Progress                                      string
	BoxOpen, BoxProgress, BoxDone                 string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
}

var current = classic()

func classic() Theme {
	return Theme{
		Name:  "classic",
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow, Progress: fgBlue,
		BoxOpen: "☐", BoxProgress: "◐", BoxDone: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Name:  "neon",
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m", Progress: "\033[94m",
			BoxOpen: "◻", BoxProgress: "◧", BoxDone: "◼",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
		}
	case "mono":
		disableColor = true
		current = Theme{
			Name:    "mono",
			BoxOpen: "[ ]", BoxProgress: "[~]", BoxDone: "[x]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
		}
	default:
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }

// Box returns the marker and color for a stage.
func (t Theme) Box(s model.Stage) (box, color string) {
	switch s {
	case model.StageInProgress:
		return t.BoxProgress, t.Progress
	case model.StageDone:
		return t.BoxDone, t.Success
	case model.StageOpen:
		return t.BoxOpen, t.Pending
	}
	return t.BoxOpen, t.Muted
}
