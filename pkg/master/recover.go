package master

import (
	"fmt"

	"github.com/clustermaster/masterd/pkg/types"
)

// recover replays the durable maintenance graph from the registrar.
// Frameworks, agents, offers, and operations are not replayed — they
// do not survive a leader failover, matching the source system's own
// recovery model; schedulers and agents are expected to re-register.
func (m *Master) recover() error {
	if m.registrar == nil {
		m.mu.Lock()
		m.recovered = true
		m.mu.Unlock()
		return nil
	}

	store := m.registrar.Store()

	machines, err := store.ListMachines()
	if err != nil {
		return fmt.Errorf("master: list machines: %w", err)
	}
	schedule, err := store.GetMaintenanceSchedule()
	if err != nil {
		return fmt.Errorf("master: get maintenance schedule: %w", err)
	}

	m.mu.Lock()
	for _, mm := range machines {
		m.machines[mm.ID] = mm
	}
	if schedule != nil {
		m.schedule = schedule
	} else {
		m.schedule = &types.MaintenanceSchedule{}
	}
	m.recovered = true
	m.mu.Unlock()

	return nil
}
