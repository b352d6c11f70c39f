package main

import "github.com/erimojdehi/aris-driver-check/cmd"

func main() {
	cmd.Execute()
}
