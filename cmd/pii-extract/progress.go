package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressBarStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212"))

	progressCountStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

const progressBarWidth = 30

// renderProgress draws a single-line progress bar that overwrites itself
func renderProgress(done, total int) {
	if total <= 0 {
		return
	}

	filled := done * progressBarWidth / total
	bar := ""
	for i := 0; i < progressBarWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}

	fmt.Printf("\r%s %s",
		progressBarStyle.Render(bar),
		progressCountStyle.Render(fmt.Sprintf("%d/%d sections", done, total)))

	if done == total {
		fmt.Println()
	}
}
