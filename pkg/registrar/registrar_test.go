package registrar

import (
	"testing"
	"time"

	"github.com/clustermaster/masterd/pkg/types"
)

func newTestRegistrar(t *testing.T) *Registrar {
	t.Helper()
	r, err := New(Config{
		NodeID:   "node-1",
		BindAddr: "127.0.0.1:0",
		DataDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r
}

func TestBootstrapBecomesLeader(t *testing.T) {
	r := newTestRegistrar(t)
	defer r.Shutdown()

	if err := r.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	if !waitForLeader(r) {
		t.Fatal("node did not become leader after bootstrap")
	}
}

func TestPutMachineReplicatesToStore(t *testing.T) {
	r := newTestRegistrar(t)
	defer r.Shutdown()

	if err := r.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !waitForLeader(r) {
		t.Fatal("node did not become leader after bootstrap")
	}

	id := types.MachineID{Hostname: "agent-1.example.com", IP: "10.0.0.5"}
	m := types.NewMachine(id)

	if err := r.PutMachine(m); err != nil {
		t.Fatalf("PutMachine returned error: %v", err)
	}

	got, err := r.Store().GetMachine(id)
	if err != nil {
		t.Fatalf("GetMachine returned error: %v", err)
	}
	if got.Mode != types.MachineDraining {
		t.Errorf("Mode = %v, want %v", got.Mode, types.MachineDraining)
	}
}

func waitForLeader(r *Registrar) bool {
	for i := 0; i < 200; i++ {
		if r.IsLeader() {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return false
}
