package main

import "github.com/goplus/kiss/cmd/kiss/internal"

func main() {
	internal.Execute()
}
