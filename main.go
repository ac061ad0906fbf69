package main

import (
	"github.com/mervel/storefront/cmd"
)

func main() {
	cmd.Execute()
}
