package main

import "github.com/streetlevel/streetlevel/cmd"

func main() {
	cmd.Execute()
}
