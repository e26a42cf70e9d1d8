package main

import "github.com/PabloGalante/agronova/internal/commands"

func main() {
	commands.Execute()
}
