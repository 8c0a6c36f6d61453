package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/types"
)

func (s *Server) handleGetMaintenanceSchedule(w http.ResponseWriter, r *http.Request) {
	if !s.checkRecovery(w) {
		return
	}
	v, err := s.batcher.Do(r.Context(), func(snap *master.Snapshot) (interface{}, error) {
		return scheduleResponse{Schedule: snap.Schedule}, nil
	})
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// maintenanceScheduleBody is the plain-JSON wire shape of the legacy
// maintenance schedule endpoints: a flat list of windows, each naming
// the machines it covers and when they become unavailable.
type maintenanceScheduleBody struct {
	Windows []struct {
		Machines []types.MachineID `json:"machines"`
		Start    string            `json:"start"`
		Seconds  int64             `json:"duration_seconds"`
	} `json:"windows"`
}

func (s *Server) handleUpdateMaintenanceSchedule(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}

	var body maintenanceScheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("malformed maintenance schedule: "+err.Error()))
		return
	}
	schedule := types.MaintenanceSchedule{Windows: make([]types.MaintenanceWindow, 0, len(body.Windows))}
	for _, win := range body.Windows {
		start, err := parseTime(win.Start)
		if err != nil {
			writeError(w, badRequest("malformed window start: "+err.Error()))
			return
		}
		schedule.Windows = append(schedule.Windows, types.MaintenanceWindow{
			Machines:       win.Machines,
			Unavailability: types.Unavailability{Start: start, Duration: secondsToDuration(win.Seconds)},
		})
	}

	call := &types.Call{
		Type:                      types.CallUpdateMaintenanceSchedule,
		UpdateMaintenanceSchedule: &types.CallUpdateMaintenanceScheduleData{Schedule: schedule},
	}
	result, herr := s.submit(r, call)
	if herr != nil {
		writeError(w, herr)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Schedule: result.Schedule})
}

func (s *Server) handleGetMaintenanceStatus(w http.ResponseWriter, r *http.Request) {
	if !s.checkRecovery(w) {
		return
	}
	v, err := s.batcher.Do(r.Context(), func(snap *master.Snapshot) (interface{}, error) {
		return machinesResponse{Machines: snap.ListMachines()}, nil
	})
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type machineListBody struct {
	Machines []types.MachineID `json:"machines"`
}

func (s *Server) decodeMachineList(w http.ResponseWriter, r *http.Request) ([]types.MachineID, bool) {
	var body machineListBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("malformed machine list: "+err.Error()))
		return nil, false
	}
	if len(body.Machines) == 0 {
		writeError(w, badRequest("machine list must not be empty"))
		return nil, false
	}
	return body.Machines, true
}

func (s *Server) handleMachineDown(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}
	machines, ok := s.decodeMachineList(w, r)
	if !ok {
		return
	}
	call := &types.Call{Type: types.CallStartMaintenance, StartMaintenance: &types.CallStartMaintenanceData{Machines: machines}}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleMachineUp(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}
	machines, ok := s.decodeMachineList(w, r)
	if !ok {
		return
	}
	call := &types.Call{Type: types.CallStopMaintenance, StopMaintenance: &types.CallStopMaintenanceData{Machines: machines}}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
