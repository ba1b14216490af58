package main

import "github.com/user/ocisec/cmd"

func main() {
	cmd.Execute()
}
