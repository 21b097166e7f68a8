package main

import "github.com/gaurav-prasanna/webclipper/cmd"

func main() {
	cmd.Execute()
}
