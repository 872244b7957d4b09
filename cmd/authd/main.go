package main

import "github.com/Brandon689/reqauth/cmd/authd/cmd"

func main() {
	cmd.Execute()
}
