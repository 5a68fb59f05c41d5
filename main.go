package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/Zachkp/dev-portfolio/cmd"
)

func main() {
	cmd.Execute()
}
