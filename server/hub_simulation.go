package server

import (
	"encoding/json"
	"fmt"
)

type simulationObject struct{}

// dispatch processes requests made on the simulation object: starting and
// pausing the tick loop, restarting from the snapshot taken at hub
// construction, reporting run state, and dumping a full save-state blob.
func (s *simulationObject) dispatch(h *Hub, req Request, conn *connection) {
	ch := conn.pushChan
	logger.Debug("request for simulation received", "object", req.Object, "action", req.Action)
	switch req.Action {
	case "start":
		h.Start()
		h.audit.append("start", "simulation", "tick loop started")
		ch <- NewOkResponse(req.ID, "simulation started")
	case "pause":
		h.Pause()
		h.audit.append("pause", "simulation", "tick loop paused")
		ch <- NewOkResponse(req.ID, "simulation paused")
	case "restart":
		if h.initialSnapshot == nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("initial snapshot unavailable"))
			return
		}
		h.Pause()
		fresh, err := loadSim(h.initialSnapshot, h.Sim())
		if err != nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("failed to rebuild simulation: %s", err))
			return
		}
		h.mu.Lock()
		h.sim = fresh
		h.mu.Unlock()
		h.audit.append("restart", "simulation", "rebuilt from initial snapshot")
		ch <- NewOkResponse(req.ID, "simulation restarted")
	case "isStarted":
		data, err := json.Marshal(h.IsStarted())
		if err != nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("internal error: %s", err))
			return
		}
		ch <- NewResponse(req.ID, data)
	case "dump":
		h.mu.RLock()
		data, err := h.sim.Save()
		h.mu.RUnlock()
		if err != nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("internal error: %s", err))
			return
		}
		ch <- NewResponse(req.ID, data)
	default:
		ch <- NewErrorResponse(req.ID, fmt.Errorf("unknown action %s/%s", req.Object, req.Action))
	}
}

var _ hubObject = (*simulationObject)(nil)
