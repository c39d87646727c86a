package main

import "github.com/codecrest/codecrest_backend/cmd"

func main() {
	cmd.Execute()
}
