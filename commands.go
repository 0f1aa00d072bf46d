package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/fethicandan/esplink/espdrone"
	"github.com/fethicandan/esplink/espserver"
	"github.com/fethicandan/esplink/flightlog"
)

var linkFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "drone",
		Value: espdrone.DefaultDroneAddr,
		Usage: "Vehicle address",
	},
	cli.UintFlag{
		Name:  "droneport",
		Value: espdrone.DefaultDronePort,
		Usage: "Vehicle command port",
	},
	cli.UintFlag{
		Name:  "localport",
		Value: espdrone.DefaultLocalPort,
		Usage: "Local bound port",
	},
	cli.StringFlag{
		Name:  "logdir",
		Value: "",
		Usage: "Flight log directory (default ~/.esplink)",
	},
}

var COMMANDS = []cli.Command{
	{
		Name:   "detect",
		Usage:  "Connect and probe for the height-sensor deck",
		Flags:  linkFlags,
		Action: detectCommand,
	},
	{
		Name:   "monitor",
		Usage:  "Connect and print telemetry until interrupted",
		Flags:  linkFlags,
		Action: monitorCommand,
	},
	espserver.ServeCommand,
}

func newLink(ctx *cli.Context) *espdrone.UDPLink {
	return espdrone.NewUDPLink(
		ctx.String("drone"),
		int(ctx.Uint("droneport")),
		int(ctx.Uint("localport")),
	)
}

func detectCommand(ctx *cli.Context) error {
	drone := espdrone.New(newLink(ctx), espdrone.Events{})
	if err := drone.Connect(); err != nil {
		return err
	}
	defer drone.Disconnect()

	if drone.DetectHeightSensor() {
		fmt.Println("height sensor: present")
	} else {
		fmt.Println("height sensor: not detected")
	}
	return nil
}

func monitorCommand(ctx *cli.Context) error {
	if dir := ctx.String("logdir"); dir != "" {
		if err := flightlog.SetDir(dir); err != nil {
			return err
		}
	}

	sessionLog, err := flightlog.Open("monitor")
	if err != nil {
		fmt.Printf("flight log disabled: %v\n", err)
	} else {
		defer sessionLog.Close()
	}

	drone := espdrone.New(newLink(ctx), espdrone.Events{
		OnConnectionChange: func(up bool) {
			fmt.Printf("connection: %v\n", up)
		},
		OnVoltage: func(v float32) {
			fmt.Printf("battery: %.2fV\n", v)
		},
		OnLogLine: func(line string) {
			fmt.Println(line)
			if sessionLog != nil {
				sessionLog.Append(line)
			}
		},
	})
	if err := drone.Connect(); err != nil {
		return err
	}
	defer drone.Disconnect()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
