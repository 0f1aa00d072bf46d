// Package espdrone implements the command-and-telemetry core for an
// ESP-Drone-class quadcopter reached over Wi-Fi UDP. It owns the wire codec,
// the UDP transport, the heartbeat-based connection health monitor, the
// telemetry router and the flight sequencer (arming, manual flight,
// height-hold, landing, emergency stop).
//
// The package has no user interface: callers supply normalised control
// inputs and discrete commands, and receive status callbacks through an
// injected Events value.
package espdrone
