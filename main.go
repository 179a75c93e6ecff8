package main

import (
	"github.com/superbridgeapp/superchain-token-list/cmd"
)

func main() {
	cmd.Execute()
}
