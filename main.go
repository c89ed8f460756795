package main

import "taskly/cmd"

func main() {
	cmd.Execute()
}
