package main

import "github.com/mvp-joe/project-strings/internal/cli"

func main() {
	cli.Execute()
}
