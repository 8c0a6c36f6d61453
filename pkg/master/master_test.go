package master

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/types"
)

func newTestMaster(t *testing.T) (*Master, context.Context) {
	t.Helper()
	m := New(Config{
		NodeID: "test-node",
		Broker: events.NewBroker(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(func() {
		m.Stop()
		cancel()
	})
	return m, ctx
}

func TestSubscribeRegistersFramework(t *testing.T) {
	m, ctx := newTestMaster(t)

	result, err := m.Submit(ctx, &types.Call{
		Type: types.CallSubscribe,
		Subscribe: &types.CallSubscribeData{
			FrameworkInfo: types.FrameworkInfo{ID: "fw-1", Name: "test-framework"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.NotEqual(t, types.StreamID{}, result.StreamID)
}

func TestReserveThenUnreserveRoundTrips(t *testing.T) {
	m, ctx := newTestMaster(t)

	_, err := m.RegisterAgent(ctx, types.AgentInfo{ID: "agent-1", Hostname: "h1"}, types.Resources{CPUs: 4, Mem: 1024}, types.MachineID{})
	require.NoError(t, err)

	_, err = m.Submit(ctx, &types.Call{
		Type:        types.CallSubscribe,
		Subscribe:   &types.CallSubscribeData{FrameworkInfo: types.FrameworkInfo{ID: "fw-1", Principal: "alice"}},
	})
	require.NoError(t, err)

	reserveResult, err := m.Submit(ctx, &types.Call{
		Type:        types.CallReserveResources,
		FrameworkID: "fw-1",
		ReserveResources: &types.CallReserveResourcesData{
			AgentID:   "agent-1",
			Resources: types.Resources{CPUs: 1, Role: "analytics", Principal: "alice"},
		},
	})
	require.NoError(t, err)
	assert.True(t, reserveResult.Accepted)

	unreserveResult, err := m.Submit(ctx, &types.Call{
		Type:        types.CallUnreserveResources,
		FrameworkID: "fw-1",
		UnreserveResources: &types.CallUnreserveResourcesData{
			AgentID:   "agent-1",
			Resources: types.Resources{CPUs: 1, Role: "analytics", Principal: "alice"},
		},
	})
	require.NoError(t, err)
	assert.True(t, unreserveResult.Accepted)
}

func TestReserveWrongPrincipalRejected(t *testing.T) {
	m, ctx := newTestMaster(t)

	_, err := m.RegisterAgent(ctx, types.AgentInfo{ID: "agent-1"}, types.Resources{CPUs: 4}, types.MachineID{})
	require.NoError(t, err)
	_, err = m.Submit(ctx, &types.Call{
		Type:      types.CallSubscribe,
		Subscribe: &types.CallSubscribeData{FrameworkInfo: types.FrameworkInfo{ID: "fw-1", Principal: "alice"}},
	})
	require.NoError(t, err)

	result, err := m.Submit(ctx, &types.Call{
		Type:        types.CallReserveResources,
		FrameworkID: "fw-1",
		ReserveResources: &types.CallReserveResourcesData{
			AgentID:   "agent-1",
			Resources: types.Resources{CPUs: 1, Role: "analytics", Principal: "bob"},
		},
	})
	require.NoError(t, err)
	assert.Error(t, result.Err)
	assert.True(t, IsAuthzError(result.Err))
}

func TestMarkAgentGoneRescindsOffers(t *testing.T) {
	m, ctx := newTestMaster(t)

	_, err := m.RegisterAgent(ctx, types.AgentInfo{ID: "agent-1"}, types.Resources{CPUs: 4}, types.MachineID{})
	require.NoError(t, err)
	_, err = m.Submit(ctx, &types.Call{
		Type:      types.CallSubscribe,
		Subscribe: &types.CallSubscribeData{FrameworkInfo: types.FrameworkInfo{ID: "fw-1"}},
	})
	require.NoError(t, err)
	offer, err := m.CreateOffer(ctx, "fw-1", "agent-1", types.Resources{CPUs: 2})
	require.NoError(t, err)
	require.NotNil(t, offer)

	result, err := m.Submit(ctx, &types.Call{
		Type:          types.CallMarkAgentGone,
		MarkAgentGone: &types.CallMarkAgentGoneData{AgentID: "agent-1"},
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	var snapshotOffers []*types.Offer
	require.NoError(t, m.Batch(ctx, func(s *Snapshot) {
		snapshotOffers = s.ListOffers()
	}))
	assert.Empty(t, snapshotOffers)

	again, err := m.Submit(ctx, &types.Call{
		Type:          types.CallMarkAgentGone,
		MarkAgentGone: &types.CallMarkAgentGoneData{AgentID: "agent-1"},
	})
	require.NoError(t, err)
	assert.True(t, again.Accepted, "marking an already-gone agent gone again is idempotent")
	assert.True(t, again.AlreadyGone)
}

func TestMarkAgentGoneUnknownAgentIsNotFound(t *testing.T) {
	m, ctx := newTestMaster(t)

	result, err := m.Submit(ctx, &types.Call{
		Type:          types.CallMarkAgentGone,
		MarkAgentGone: &types.CallMarkAgentGoneData{AgentID: "no-such-agent"},
	})
	require.NoError(t, err)
	assert.Error(t, result.Err)
	assert.True(t, IsNotFoundError(result.Err))
	assert.False(t, IsCallError(result.Err))
}

func TestMaintenanceScheduleDrainsAndRestoresMachine(t *testing.T) {
	m, ctx := newTestMaster(t)

	machineID := types.MachineID{Hostname: "host-1", IP: "10.0.0.1"}
	result, err := m.Submit(ctx, &types.Call{
		Type: types.CallUpdateMaintenanceSchedule,
		UpdateMaintenanceSchedule: &types.CallUpdateMaintenanceScheduleData{
			Schedule: types.MaintenanceSchedule{
				Windows: []types.MaintenanceWindow{{
					Machines:       []types.MachineID{machineID},
					Unavailability: types.Unavailability{Start: time.Now()},
				}},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	startResult, err := m.Submit(ctx, &types.Call{
		Type:             types.CallStartMaintenance,
		StartMaintenance: &types.CallStartMaintenanceData{Machines: []types.MachineID{machineID}},
	})
	require.NoError(t, err)
	assert.True(t, startResult.Accepted)

	stopResult, err := m.Submit(ctx, &types.Call{
		Type:            types.CallStopMaintenance,
		StopMaintenance: &types.CallStopMaintenanceData{Machines: []types.MachineID{machineID}},
	})
	require.NoError(t, err)
	assert.True(t, stopResult.Accepted)

	var machines []*types.Machine
	require.NoError(t, m.Batch(ctx, func(s *Snapshot) { machines = s.ListMachines() }))
	require.Len(t, machines, 1)
	assert.Equal(t, types.MachineUp, machines[0].Mode)
}

func TestUpdateWeightsAndQuota(t *testing.T) {
	m, ctx := newTestMaster(t)

	result, err := m.Submit(ctx, &types.Call{
		Type:          types.CallUpdateWeights,
		UpdateWeights: &types.CallUpdateWeightsData{Weights: []types.RoleState{{Name: "analytics", Weight: 2.5}}},
	})
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	quotaResult, err := m.Submit(ctx, &types.Call{
		Type:     types.CallSetQuota,
		SetQuota: &types.CallSetQuotaData{Role: "analytics", Quota: types.Resources{CPUs: 10}},
	})
	require.NoError(t, err)
	assert.True(t, quotaResult.Accepted)

	var roles map[string]*types.RoleState
	require.NoError(t, m.Batch(ctx, func(s *Snapshot) { roles = s.Roles }))
	require.Contains(t, roles, "analytics")
	assert.Equal(t, 2.5, roles["analytics"].Weight)
	assert.Equal(t, 10.0, roles["analytics"].Quota.CPUs)
}
