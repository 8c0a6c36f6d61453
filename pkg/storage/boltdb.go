package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/clustermaster/masterd/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMachines    = []byte("machines")
	bucketMaintenance = []byte("maintenance")
	bucketGoneAgents  = []byte("gone_agents")
	bucketCA          = []byte("ca")
)

const maintenanceScheduleKey = "schedule"

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if necessary) a BoltDB-backed Store under
// dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "masterd.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMachines, bucketMaintenance, bucketGoneAgents, bucketCA} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func machineKey(id types.MachineID) []byte {
	return []byte(id.String())
}

// PutMachine upserts a machine record.
func (s *BoltStore) PutMachine(m *types.Machine) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMachines)
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return b.Put(machineKey(m.ID), data)
	})
}

// GetMachine looks up a machine by id.
func (s *BoltStore) GetMachine(id types.MachineID) (*types.Machine, error) {
	var m types.Machine
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMachines)
		data := b.Get(machineKey(id))
		if data == nil {
			return fmt.Errorf("machine not found: %s", id)
		}
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMachines returns every machine currently tracked.
func (s *BoltStore) ListMachines() ([]*types.Machine, error) {
	var machines []*types.Machine
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMachines)
		return b.ForEach(func(k, v []byte) error {
			var m types.Machine
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			machines = append(machines, &m)
			return nil
		})
	})
	return machines, err
}

// DeleteMachine removes a machine record, used once a machine returns to
// UP and leaves the maintenance graph entirely.
func (s *BoltStore) DeleteMachine(id types.MachineID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMachines)
		return b.Delete(machineKey(id))
	})
}

// PutMaintenanceSchedule replaces the single maintenance schedule record.
func (s *BoltStore) PutMaintenanceSchedule(sched *types.MaintenanceSchedule) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMaintenance)
		data, err := json.Marshal(sched)
		if err != nil {
			return err
		}
		return b.Put([]byte(maintenanceScheduleKey), data)
	})
}

// GetMaintenanceSchedule returns the current schedule, or an empty
// schedule if none has ever been posted.
func (s *BoltStore) GetMaintenanceSchedule() (*types.MaintenanceSchedule, error) {
	var sched types.MaintenanceSchedule
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMaintenance)
		data := b.Get([]byte(maintenanceScheduleKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &sched)
	})
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// PutGoneAgent records that id was marked gone at the given unix
// timestamp.
func (s *BoltStore) PutGoneAgent(id types.AgentID, at int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGoneAgents)
		return b.Put([]byte(id), []byte(strconv.FormatInt(at, 10)))
	})
}

// IsGoneAgent reports whether id has ever been marked gone.
func (s *BoltStore) IsGoneAgent(id types.AgentID) (bool, error) {
	var gone bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGoneAgents)
		gone = b.Get([]byte(id)) != nil
		return nil
	})
	return gone, err
}

// ListGoneAgents returns every agent ever marked gone, with the unix
// timestamp of the marking.
func (s *BoltStore) ListGoneAgents() (map[types.AgentID]int64, error) {
	out := make(map[types.AgentID]int64)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGoneAgents)
		return b.ForEach(func(k, v []byte) error {
			at, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return err
			}
			out[types.AgentID(k)] = at
			return nil
		})
	})
	return out, err
}

// SaveCA persists the master's CA material.
func (s *BoltStore) SaveCA(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCA)
		return b.Put([]byte("ca"), data)
	})
}

// GetCA returns the master's CA material.
func (s *BoltStore) GetCA() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCA)
		v := b.Get([]byte("ca"))
		if v == nil {
			return fmt.Errorf("CA not found")
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}
