package main

import "compliance-engine/cmd"

func main() {
	cmd.Execute()
}
