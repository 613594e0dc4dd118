package main

import "ruparse/cmd"

func main() {
	cmd.Execute()
}
