package main

import "github.com/vietddude/ingestd/internal/cli"

func main() {
	cli.Execute()
}
