package main

import "github.com/andrescamacho/warehouse-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
