package main

import "github.com/nikogura/resume-randomizer/cmd"

func main() {
	cmd.Execute()
}
