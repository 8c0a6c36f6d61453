package master

import (
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// dispatchUpdateMaintenanceSchedule replaces the maintenance schedule
// wholesale. Every machine named in the new schedule enters DRAINING;
// machines that dropped out of the schedule return to UP.
func (m *Master) dispatchUpdateMaintenanceSchedule(call *types.Call) *Result {
	if call.UpdateMaintenanceSchedule == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	schedule := call.UpdateMaintenanceSchedule.Schedule

	named := make(map[types.MachineID]types.Unavailability)
	for _, w := range schedule.Windows {
		for _, id := range w.Machines {
			named[id] = w.Unavailability
		}
	}

	for id, unavail := range named {
		machine, ok := m.machines[id]
		if !ok {
			machine = types.NewMachine(id)
			m.machines[id] = machine
		}
		machine.Mode = types.MachineDraining
		machine.Unavailability = unavail
		if m.registrar != nil {
			if err := m.registrar.PutMachine(machine); err != nil {
				Abort("master: registrar commit for machine " + id.String() + " failed: " + err.Error())
				return &Result{Err: err}
			}
		}
	}

	for id, machine := range m.machines {
		if _, stillNamed := named[id]; !stillNamed && machine.Mode != types.MachineUp {
			machine.Mode = types.MachineUp
			machine.Unavailability = types.Unavailability{}
			if m.registrar != nil {
				if err := m.registrar.PutMachine(machine); err != nil {
					Abort("master: registrar commit for machine " + id.String() + " failed: " + err.Error())
					return &Result{Err: err}
				}
			}
		}
	}

	m.schedule = &schedule
	if m.registrar != nil {
		if err := m.registrar.PutMaintenanceSchedule(m.schedule); err != nil {
			Abort("master: registrar commit for maintenance schedule failed: " + err.Error())
			return &Result{Err: err}
		}
	}

	masterLogger := log.WithComponent("master")
	masterLogger.Info().Int("windows", len(schedule.Windows)).Msg("maintenance schedule updated")
	return &Result{Accepted: true, Schedule: m.schedule}
}

// dispatchStartMaintenance transitions a set of already-draining
// machines to DOWN. A machine must have been named in the schedule
// first; START_MAINTENANCE does not implicitly schedule one.
func (m *Master) dispatchStartMaintenance(call *types.Call) *Result {
	if call.StartMaintenance == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	for _, id := range call.StartMaintenance.Machines {
		machine, ok := m.machines[id]
		if !ok || machine.Mode != types.MachineDraining {
			return &Result{Err: errInvalidCall("machine " + id.String() + " is not draining")}
		}
	}
	for _, id := range call.StartMaintenance.Machines {
		machine := m.machines[id]
		machine.Mode = types.MachineDown
		if m.registrar != nil {
			if err := m.registrar.PutMachine(machine); err != nil {
				Abort("master: registrar commit for machine " + id.String() + " failed: " + err.Error())
				return &Result{Err: err}
			}
		}
		for agentID := range machine.Agents {
			if agent, ok := m.agents[agentID]; ok {
				agent.Status = types.AgentUnreachable
			}
		}
	}
	return &Result{Accepted: true}
}

// dispatchStopMaintenance returns a set of DOWN machines to UP and
// drops their schedule entry.
func (m *Master) dispatchStopMaintenance(call *types.Call) *Result {
	if call.StopMaintenance == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	for _, id := range call.StopMaintenance.Machines {
		machine, ok := m.machines[id]
		if !ok || machine.Mode != types.MachineDown {
			return &Result{Err: errInvalidCall("machine " + id.String() + " is not down")}
		}
	}
	for _, id := range call.StopMaintenance.Machines {
		machine := m.machines[id]
		machine.Mode = types.MachineUp
		machine.Unavailability = types.Unavailability{}
		if m.registrar != nil {
			if err := m.registrar.PutMachine(machine); err != nil {
				Abort("master: registrar commit for machine " + id.String() + " failed: " + err.Error())
				return &Result{Err: err}
			}
		}
		for agentID := range machine.Agents {
			if agent, ok := m.agents[agentID]; ok && agent.Status == types.AgentUnreachable {
				agent.Status = types.AgentRegistered
			}
		}
	}
	removeMachinesFromSchedule(m.schedule, call.StopMaintenance.Machines)
	return &Result{Accepted: true, Schedule: m.schedule}
}

func removeMachinesFromSchedule(schedule *types.MaintenanceSchedule, stopped []types.MachineID) {
	stop := make(map[types.MachineID]bool, len(stopped))
	for _, id := range stopped {
		stop[id] = true
	}
	windows := make([]types.MaintenanceWindow, 0, len(schedule.Windows))
	for _, w := range schedule.Windows {
		remaining := make([]types.MachineID, 0, len(w.Machines))
		for _, id := range w.Machines {
			if !stop[id] {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) > 0 {
			w.Machines = remaining
			windows = append(windows, w)
		}
	}
	schedule.Windows = windows
}
