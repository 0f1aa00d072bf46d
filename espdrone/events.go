package espdrone

// Events is the injected set of caller notifications. Nil fields are
// skipped. Handlers are invoked from the core's internal goroutines and
// must not block.
type Events struct {
	OnConnectionChange     func(up bool)
	OnVoltage              func(volts float32)
	OnHeightSensorDetected func(present bool)
	OnLogLine              func(line string)
}

func (e *Events) connectionChange(up bool) {
	if e.OnConnectionChange != nil {
		e.OnConnectionChange(up)
	}
}

func (e *Events) voltage(v float32) {
	if e.OnVoltage != nil {
		e.OnVoltage(v)
	}
}

func (e *Events) heightSensorDetected(present bool) {
	if e.OnHeightSensorDetected != nil {
		e.OnHeightSensorDetected(present)
	}
}

func (e *Events) logLine(line string) {
	if e.OnLogLine != nil {
		e.OnLogLine(line)
	}
}
