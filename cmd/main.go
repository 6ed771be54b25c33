package main

import (
	"github.com/consensys/go-hlo/pkg/cmd"
)

func main() {
	cmd.Execute()
}
