package main

import "github.com/bloodmagesoftware/mapgeo/cmd"

func main() {
	cmd.Execute()
}
