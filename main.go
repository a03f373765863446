package main

import "github.com/CMPGFB/cbBTC-Agent-Plugin/cmd"

func main() {
	cmd.Execute()
}
