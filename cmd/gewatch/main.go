package main

import "ge-price-monitor/internal/cli"

func main() {
	cli.Execute()
}
