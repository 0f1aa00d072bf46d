package espserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fethicandan/esplink/espdrone"
)

func commanderInitRoute(r *mux.Router) {
	r.HandleFunc("/control", controlSetHandler).Methods("PUT")
	r.HandleFunc("/trim", trimSetHandler).Methods("PUT")
}

type controlRequest struct {
	Roll       float32 `json:"roll"`
	Pitch      float32 `json:"pitch"`
	Yaw        float32 `json:"yaw"`
	Thrust     float32 `json:"thrust"`
	YawEnabled bool    `json:"yawEnabled"`
}

func controlSetHandler(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Bad request!")
		return
	}

	drone.SetControlInput(espdrone.ControlInput{
		Roll:       req.Roll,
		Pitch:      req.Pitch,
		Yaw:        req.Yaw,
		ThrustNorm: req.Thrust,
		YawEnabled: req.YawEnabled,
	})
	respondEmpty(w)
}

type trimRequest struct {
	Roll  float32 `json:"roll"`
	Pitch float32 `json:"pitch"`
}

func trimSetHandler(w http.ResponseWriter, r *http.Request) {
	var req trimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Bad request!")
		return
	}

	drone.SetTrim(espdrone.Trim{Roll: req.Roll, Pitch: req.Pitch})
	respondEmpty(w)
}
