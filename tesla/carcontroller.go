package tesla

import (
	"math"

	"tesla-bridge-core/utils"
)

// Apply encodes one tick of actuation. Frames are returned in transmit order:
// steering, longitudinal, cancel. cs must be the state returned by the
// Update call of the same tick.
func (ci *CarInterface) Apply(req Request, cs CarState) (Actuators, []utils.BusFrame) {
	st := &ci.st
	p := ci.params
	var frames []utils.BusFrame

	// No torque blending: a driver override drops lateral authority.
	handsOnFault := st.handsOnFault(p)
	lkasEnabled := req.LatActive && !handsOnFault

	// A non-finite request carries no authority for this tick only.
	if lkasEnabled && !isFinite(req.SteeringAngleDeg) {
		ci.log.Warn("frame %d: non-finite steering request %v, following wheel", st.frame, req.SteeringAngleDeg)
		lkasEnabled = false
	}
	accel := req.Accel
	if !isFinite(accel) {
		if ci.variant.Longitudinal {
			ci.log.Warn("frame %d: non-finite accel request %v, using 0", st.frame, accel)
		}
		accel = 0
	}

	if st.frame%steeringStep == 0 {
		angle := cs.SteeringAngleDeg
		if lkasEnabled {
			angle = ApplyStdSteerAngleLimits(req.SteeringAngleDeg, st.applyAngleLast, cs.VEgo, p)
			// stay near the measured angle so the EPAS does not fault
			angle = clip(angle, cs.SteeringAngleDeg-p.SteerAngleBand, cs.SteeringAngleDeg+p.SteerAngleBand)
		}
		st.applyAngleLast = angle

		f, err := ci.can.steeringControl(angle, lkasEnabled, CounterOf(st.frame/steeringStep))
		if err != nil {
			ci.log.Error("frame %d: %v", st.frame, err)
		} else {
			frames = append(frames, f)
		}
	}

	if ci.variant.Longitudinal {
		cmd := longitudinalCommand{
			accState:    st.dasControl["DAS_accState"],
			targetSpeed: math.Max(cs.VEgo+accel*p.AccelToSpeedMultiplier, 0),
			maxAccel:    math.Max(accel, 0),
			minAccel:    math.Min(accel, 0),
		}
		fs, err := ci.policy.longitudinalFrames(ci.can, st, cmd)
		if err != nil {
			ci.log.Error("frame %d: longitudinal: %v", st.frame, err)
		}
		frames = append(frames, fs...)
	}

	cancel := req.Cancel || handsOnFault
	if st.frame%cancelStep == 0 && cancel && st.accEnabled {
		fs, err := ci.policy.cancelFrames(ci.can, st)
		if err != nil {
			ci.log.Error("frame %d: cancel: %v", st.frame, err)
		}
		if handsOnFault && !req.Cancel {
			ci.log.Info("frame %d: cancelling cruise on hands-on fault", st.frame)
		}
		frames = append(frames, fs...)
	}

	st.frame++
	return Actuators{
		SteeringAngleDeg: st.applyAngleLast,
		Accel:            accel,
		Cancel:           cancel,
	}, frames
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
