package main

import "github.com/jkrumboe/wizard-tracker-sub001/internal/cli"

func main() {
	cli.Execute()
}
