package main

import "dolabella/cmd"

func main() {
	cmd.Execute()
}
