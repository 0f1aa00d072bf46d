package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "esplink"
	app.Usage = "Command and telemetry link for ESP-Drone vehicles"
	app.Commands = COMMANDS

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
