package main

import (
	"github.com/no-panic/callserver/cmd"
)

func main() {
	cmd.Execute()
}
