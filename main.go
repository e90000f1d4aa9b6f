package main

import "github.com/andreeapeiu/Mini-Shell/cmd"

func main() {
	cmd.Execute()
}
