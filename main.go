package main

import "github.com/KaramelBytes/delaylens/cmd"

func main() {
	cmd.Execute()
}
