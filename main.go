package main

import "food-index/cmd"

func main() {
	cmd.Execute()
}
