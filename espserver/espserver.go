package espserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/urfave/cli"

	"github.com/fethicandan/esplink/espdrone"
	"github.com/fethicandan/esplink/flightlog"
)

var ServeCommand cli.Command = cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP/REST control server",
	Action: serveCommandHandler,
	Flags: []cli.Flag{
		cli.UintFlag{
			Name:  "port, p",
			Value: 8000,
			Usage: "HTTP listening port",
		},
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
			Name:  "static, s",
			Value: "",
			Usage: "Optional static folder. Served on /static with index.html accessible on /",
		},
		cli.StringFlag{
			Name:  "logdir",
			Value: "",
			Usage: "Flight log directory (default ~/.esplink)",
		},
	},
}

var drone *espdrone.Drone
var sessionLog *flightlog.Log

func serveCommandHandler(ctx *cli.Context) error {
	port := ctx.Uint("port")
	staticPath := ctx.String("static")

	if dir := ctx.String("logdir"); dir != "" {
		if err := flightlog.SetDir(dir); err != nil {
			return err
		}
	}

	if fl, err := flightlog.Open("serve"); err != nil {
		log.Printf("flight log disabled: %v", err)
	} else {
		sessionLog = fl
		defer sessionLog.Close()
	}

	link := espdrone.NewUDPLink(
		ctx.String("drone"),
		int(ctx.Uint("droneport")),
		int(ctx.Uint("localport")),
	)
	drone = espdrone.New(link, espdrone.Events{
		OnConnectionChange: func(up bool) {
			socketSendData("connection", connectionMessage{Connected: up})
		},
		OnVoltage: func(v float32) {
			socketSendData("voltage", voltageMessage{Voltage: v})
		},
		OnHeightSensorDetected: func(present bool) {
			socketSendData("heightsensor", heightSensorMessage{Present: present})
		},
		OnLogLine: func(line string) {
			if sessionLog != nil {
				sessionLog.Append(line)
			}
			socketSendData("log", logMessage{Line: line})
		},
	})
	defer drone.Disconnect()

	r := mux.NewRouter()
	flightInitRoute(r)
	commanderInitRoute(r)
	socketsInitRoute(r)

	if len(staticPath) > 0 {
		r.PathPrefix("/static").Handler(http.StripPrefix("/static", http.FileServer(http.Dir(staticPath))))
		r.Handle("/", http.FileServer(http.Dir(staticPath)))
		r.Handle("/favicon.ico", http.FileServer(http.Dir(staticPath)))
	}

	fmt.Println("Starting the server ...")
	fmt.Printf("Listening on 127.0.0.1:%d\n", port)
	return http.ListenAndServe(fmt.Sprintf("127.0.0.1:%d", port), r)
}

type connectionMessage struct {
	Connected bool `json:"connected"`
}

type voltageMessage struct {
	Voltage float32 `json:"voltage"`
}

type heightSensorMessage struct {
	Present bool `json:"present"`
}

type logMessage struct {
	Line string `json:"line"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, httpStatus int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, httpStatus int, msg string) {
	respondJSON(w, httpStatus, errorResponse{Error: msg})
}

func respondEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "{}")
}
