package httpapi

import (
	"github.com/clustermaster/masterd/pkg/metrics"
)

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/v1", s.handleOperator).Methods("POST")
	s.router.HandleFunc("/api/v1/scheduler", s.handleScheduler).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/redirect", s.handleRedirect).Methods("GET")
	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	s.router.HandleFunc("/master/maintenance/schedule", s.handleGetMaintenanceSchedule).Methods("GET")
	s.router.HandleFunc("/master/maintenance/schedule", s.handleUpdateMaintenanceSchedule).Methods("POST")
	s.router.HandleFunc("/master/maintenance/status", s.handleGetMaintenanceStatus).Methods("GET")
	s.router.HandleFunc("/master/machine/down", s.handleMachineDown).Methods("POST")
	s.router.HandleFunc("/master/machine/up", s.handleMachineUp).Methods("POST")

	s.router.HandleFunc("/master/roles", s.handleGetRoles).Methods("GET")
	s.router.HandleFunc("/master/weights", s.handleGetWeights).Methods("GET")
	s.router.HandleFunc("/master/weights", s.handleUpdateWeights).Methods("PUT")
	s.router.HandleFunc("/master/quota", s.handleGetQuota).Methods("GET")

	s.router.HandleFunc("/master/logging-level", s.handleGetLoggingLevel).Methods("GET")
	s.router.HandleFunc("/master/logging-level", s.handleSetLoggingLevel).Methods("POST")

	s.router.HandleFunc("/reserve", s.handleLegacyReserve).Methods("POST")
	s.router.HandleFunc("/unreserve", s.handleLegacyUnreserve).Methods("POST")
	s.router.HandleFunc("/create-volumes", s.handleLegacyCreateVolumes).Methods("POST")
	s.router.HandleFunc("/destroy-volumes", s.handleLegacyDestroyVolumes).Methods("POST")
	s.router.HandleFunc("/teardown", s.handleLegacyTeardown).Methods("POST")
	s.router.HandleFunc("/master/teardown", s.handleLegacyTeardown).Methods("POST")
}
