package main

import "github.com/byusi/indexfo/cmd"

func main() {
	cmd.Execute()
}
