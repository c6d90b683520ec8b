package main

import "github.com/Alijeyrad/salonora_backend/cmd"

func main() {
	cmd.Execute()
}
