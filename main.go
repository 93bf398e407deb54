package main

import (
	"github.com/txplain-labs/txplain/cmd"
)

func main() {
	cmd.Execute()
}
