package main

import (
	"github.com/turinglabs/kbchat/cmd"
)

func main() {
	cmd.Execute()
}
