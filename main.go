package main

import "github.com/naka-gawa/github-insights/cmd"

func main() {
	cmd.Execute()
}
