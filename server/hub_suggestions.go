package server

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type suggestionsObject struct{}

// dispatch processes requests on the suggestions object, the observation
// shell's window onto simulation.Advisor.
func (s *suggestionsObject) dispatch(h *Hub, req Request, conn *connection) {
	ch := conn.pushChan
	// The advisor reads and, on accept/reject, mutates the same Sim the tick
	// loop steps under h.mu; every path here must hold that lock too.
	h.mu.Lock()
	defer h.mu.Unlock()
	advisor := h.sim.Advisor()
	switch req.Action {
	case "list":
		data, err := json.Marshal(advisor.RecomputeIfDue())
		if err != nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("internal error: %s", err))
			return
		}
		ch <- NewResponse(req.ID, data)
	case "accept":
		id, err := parseSuggestionID(req.Params)
		if err != nil {
			ch <- NewErrorResponse(req.ID, err)
			return
		}
		if err := advisor.Accept(id); err != nil {
			ch <- NewErrorResponse(req.ID, err)
			return
		}
		h.audit.append("accept-suggestion", strconv.Itoa(id), "")
		ch <- NewOkResponse(req.ID, "suggestion accepted")
	case "reject":
		id, err := parseSuggestionID(req.Params)
		if err != nil {
			ch <- NewErrorResponse(req.ID, err)
			return
		}
		if err := advisor.Reject(id); err != nil {
			ch <- NewErrorResponse(req.ID, err)
			return
		}
		h.audit.append("reject-suggestion", strconv.Itoa(id), "")
		ch <- NewOkResponse(req.ID, "suggestion rejected")
	case "recompute":
		advisor.Recompute()
		ch <- NewOkResponse(req.ID, "recomputed")
	default:
		ch <- NewErrorResponse(req.ID, fmt.Errorf("unknown action %s/%s", req.Object, req.Action))
	}
}

func parseSuggestionID(params json.RawMessage) (int, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return 0, fmt.Errorf("unparsable request: %s (%s)", err, params)
	}
	id, err := strconv.Atoi(p.ID)
	if err != nil {
		return 0, fmt.Errorf("invalid suggestion id %q", p.ID)
	}
	return id, nil
}

var _ hubObject = (*suggestionsObject)(nil)
