package espserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func flightInitRoute(r *mux.Router) {
	r.HandleFunc("/connection", connectHandler).Methods("POST")
	r.HandleFunc("/connection", disconnectHandler).Methods("DELETE")
	r.HandleFunc("/arm", armHandler).Methods("POST")
	r.HandleFunc("/heighthold", heightHoldHandler).Methods("POST")
	r.HandleFunc("/heighthold/target", heightTargetHandler).Methods("PUT")
	r.HandleFunc("/land", landHandler).Methods("POST")
	r.HandleFunc("/emergency", emergencyHandler).Methods("POST")
	r.HandleFunc("/heightsensor/detect", detectHandler).Methods("POST")
	r.HandleFunc("/status", statusHandler).Methods("GET")
}

func connectHandler(w http.ResponseWriter, r *http.Request) {
	if err := drone.Connect(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondEmpty(w)
}

func disconnectHandler(w http.ResponseWriter, r *http.Request) {
	drone.Disconnect()
	respondEmpty(w)
}

func armHandler(w http.ResponseWriter, r *http.Request) {
	if err := drone.Arm(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondEmpty(w)
}

type heightHoldRequest struct {
	Height float32 `json:"height"`
}

func heightHoldHandler(w http.ResponseWriter, r *http.Request) {
	var req heightHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Bad request!")
		return
	}
	if err := drone.EnableHeightHold(req.Height); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondEmpty(w)
}

func heightTargetHandler(w http.ResponseWriter, r *http.Request) {
	var req heightHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Bad request!")
		return
	}
	drone.SetHeightTarget(req.Height)
	respondEmpty(w)
}

func landHandler(w http.ResponseWriter, r *http.Request) {
	if err := drone.StartLanding(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondEmpty(w)
}

func emergencyHandler(w http.ResponseWriter, r *http.Request) {
	drone.EmergencyStop()
	respondEmpty(w)
}

type detectResponse struct {
	Present bool `json:"present"`
}

// detectHandler blocks for up to the detection timeout (5s); the core
// resolves to "not present" rather than hanging.
func detectHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, detectResponse{Present: drone.DetectHeightSensor()})
}

type statusResponse struct {
	State               string   `json:"state"`
	Connected           bool     `json:"connected"`
	Armed               bool     `json:"armed"`
	HeightTarget        float32  `json:"heightTarget"`
	Voltage             *float32 `json:"voltage"`
	HeightSensorPresent *bool    `json:"heightSensorPresent"`
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:        drone.State().String(),
		Connected:    drone.IsConnected(),
		Armed:        drone.IsArmed(),
		HeightTarget: drone.HeightTarget(),
	}
	if v, ok := drone.BatteryVoltage(); ok {
		resp.Voltage = &v
	}
	if p, ok := drone.HeightSensorPresent(); ok {
		resp.HeightSensorPresent = &p
	}
	respondJSON(w, http.StatusOK, resp)
}
