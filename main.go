package main

import "github.com/Digital-Shane/show-manager/internal/cmd"

func main() {
	cmd.Execute()
}
