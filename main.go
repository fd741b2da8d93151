package main

import (
	"github.com/scentlane/storefront/cmd"
)

func main() {
	cmd.Start()
}
