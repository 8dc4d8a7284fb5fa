package main

import "github.com/jsphweid/loopgen/cmd"

func main() {
	cmd.Execute()
}
