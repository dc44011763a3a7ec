package main

import "github.com/adamgarcia4/goLearning/standby/cmd"

func main() {
	cmd.Execute()
}
