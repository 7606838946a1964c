package main

import "eventfeed/cmd"

func main() {
	cmd.Execute()
}
