package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the espalier ASCII wordmark.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []string{
		"                      _ _",
		"  ___  ___ _ __   __ _| (_) ___ _ __",
		" / _ \\/ __| '_ \\ / _` | | |/ _ \\ '__|",
		"|  __/\\__ \\ |_) | (_| | | |  __/ |",
		" \\___||___/ .__/ \\__,_|_|_|\\___|_|",
		"          |_|",
	}
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Println()
}
