package main

import "github.com/fakeyudi/codeclock/cmd"

func main() {
	cmd.Execute()
}
