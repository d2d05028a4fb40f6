// Command sonic-chat runs a spoken conversation with the model from the
// terminal: pick a voice, talk, press enter to hang up.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the token may already be in the environment.
	_ = godotenv.Load()

	program := tea.NewProgram(newModel())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "sonic-chat:", err)
		os.Exit(1)
	}
}
