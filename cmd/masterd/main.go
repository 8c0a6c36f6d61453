package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/httpapi"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/readbatch"
	"github.com/clustermaster/masterd/pkg/registrar"
	"github.com/clustermaster/masterd/pkg/security"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "masterd",
	Short: "masterd - cluster resource manager request plane",
	Long: `masterd serves the HTTP request plane in front of a raft-replicated
registry of agents, frameworks, offers, and operations: call dispatch,
content negotiation, subscription streams, the mutating-operation
pipeline, and the maintenance state machine.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"masterd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run masterd, bootstrapping a new single-node registrar with --bootstrap or joining an existing cluster otherwise",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeID, _ := cmd.Flags().GetString("node-id")
		bindAddr, _ := cmd.Flags().GetString("bind-addr")
		httpAddr, _ := cmd.Flags().GetString("http-addr")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		bootstrap, _ := cmd.Flags().GetBool("bootstrap")
		tlsEnabled, _ := cmd.Flags().GetBool("tls")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		logLevel, _ := cmd.Flags().GetString("log-level")

		log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: jsonLogs, Output: os.Stderr})

		reg, err := registrar.New(registrar.Config{NodeID: nodeID, BindAddr: bindAddr, DataDir: dataDir})
		if err != nil {
			return fmt.Errorf("masterd: create registrar: %w", err)
		}
		if bootstrap {
			if err := reg.Bootstrap(); err != nil {
				return fmt.Errorf("masterd: bootstrap registrar: %w", err)
			}
		} else {
			if err := reg.Join(); err != nil {
				return fmt.Errorf("masterd: start registrar: %w", err)
			}
		}

		broker := events.NewBroker()
		m := master.New(master.Config{NodeID: nodeID, Registrar: reg, Broker: broker})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		actorDone := make(chan struct{})
		go func() {
			defer close(actorDone)
			m.Run(ctx)
		}()

		batcher := readbatch.New(m, readbatch.DefaultMaxConcurrentReaders)

		server := httpapi.NewServer(httpapi.Config{
			Master:  m,
			Batcher: batcher,
			Addr:    httpAddr,
			Version: Version,
		})

		if tlsEnabled {
			tlsConfig, err := masterTLSConfig(reg, nodeID, httpAddr)
			if err != nil {
				return fmt.Errorf("masterd: configure tls: %w", err)
			}
			server.SetTLSConfig(tlsConfig)
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil {
				errCh <- fmt.Errorf("http api error: %w", err)
			}
		}()

		masterdLogger := log.WithComponent("masterd")
		masterdLogger.Info().
			Str("node_id", nodeID).
			Str("http_addr", httpAddr).
			Str("bind_addr", bindAddr).
			Bool("tls", tlsEnabled).
			Msg("masterd started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			masterdLogger.Info().Msg("shutting down")
		case err := <-errCh:
			masterdLogger.Error().Err(err).Msg("http api failed")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Stop(shutdownCtx); err != nil {
			masterdLogger.Error().Err(err).Msg("http api shutdown error")
		}

		m.Stop()
		cancel()
		<-actorDone
		return nil
	},
}

func init() {
	serveCmd.Flags().String("node-id", "master-1", "Unique node ID")
	serveCmd.Flags().String("bind-addr", "127.0.0.1:7946", "Address for raft communication")
	serveCmd.Flags().String("http-addr", "127.0.0.1:8080", "Address for the HTTP request plane")
	serveCmd.Flags().String("data-dir", "./masterd-data", "Data directory for registrar state")
	serveCmd.Flags().Bool("bootstrap", false, "Bootstrap a new single-node cluster rather than join an existing one")
	serveCmd.Flags().Bool("tls", false, "Terminate the HTTP request plane with mTLS, issuing the node's own certificate from an in-cluster CA")
	serveCmd.Flags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
}

// masterTLSConfig builds a server TLS config backed by this node's own
// certificate authority: a self-signed root (persisted in the
// registrar's node-local store, so this node reuses it across restarts;
// it is not replicated to other nodes) issuing this node's server
// certificate, and requiring every client to present one it can verify
// back to that same root.
func masterTLSConfig(reg *registrar.Registrar, nodeID, httpAddr string) (*tls.Config, error) {
	if err := security.SetClusterEncryptionKey(security.DeriveKeyFromClusterID(nodeID)); err != nil {
		return nil, fmt.Errorf("set CA encryption key: %w", err)
	}
	ca := security.NewCertAuthority(reg.Store())
	if err := ca.LoadFromStore(); err != nil {
		if err := ca.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize CA: %w", err)
		}
		if err := ca.SaveToStore(); err != nil {
			return nil, fmt.Errorf("persist CA: %w", err)
		}
	}

	host, _, err := net.SplitHostPort(httpAddr)
	if err != nil {
		host = httpAddr
	}
	dnsNames := []string{host, "localhost"}
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = append(ips, ip)
	}

	cert, err := ca.IssueNodeCertificate(nodeID, "master", dnsNames, ips)
	if err != nil {
		return nil, fmt.Errorf("issue node certificate: %w", err)
	}

	if certDir, dirErr := security.GetCertDir("master", nodeID); dirErr == nil {
		masterdLogger := log.WithComponent("masterd")
		if err := security.SaveCertToFile(cert, certDir); err != nil {
			masterdLogger.Warn().Err(err).Msg("could not persist node certificate to disk")
		} else if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
			masterdLogger.Warn().Err(err).Msg("could not persist CA certificate to disk")
		}
	}

	rootCert, err := x509.ParseCertificate(ca.GetRootCACert())
	if err != nil {
		return nil, fmt.Errorf("parse root CA certificate: %w", err)
	}
	rootPool := x509.NewCertPool()
	rootPool.AddCert(rootCert)

	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    rootPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
