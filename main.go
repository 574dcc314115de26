package main

import "diningroom/internal/cmd"

func main() {
	cmd.Execute()
}
