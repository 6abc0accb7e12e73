// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/onos-lib-go/pkg/northbound"
	"github.com/onosproject/stratum-tdi/pkg/device"
	"github.com/onosproject/stratum-tdi/pkg/loader"
	devsvc "github.com/onosproject/stratum-tdi/pkg/northbound/device"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
	"github.com/onosproject/stratum-tdi/pkg/utils"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
)

var log = logging.GetLogger("manager")

// Config is a manager configuration
type Config struct {
	CAPath      string
	KeyPath     string
	CertPath    string
	GRPCPort    int
	NoTLS       bool
	ChassisPath string
}

// Manager single point of entry for the stratum-tdi daemon
type Manager struct {
	Config Config
	SDE    tdi.SDE
	Device *device.Device
}

// NewManager initializes the application manager
func NewManager(cfg Config) *Manager {
	log.Infow("Creating manager")
	mgr := Manager{
		Config: cfg,
	}
	return &mgr
}

// Run runs manager
func (m *Manager) Run() {
	log.Infow("Starting Manager")

	if err := m.Start(); err != nil {
		log.Fatalw("Unable to run Manager", "error", err)
	}
}

// Start initializes the device core and starts the NB gRPC API.
func (m *Manager) Start() error {
	cfg, p4infoPath, err := loader.LoadDeviceConfig(m.Config.ChassisPath)
	if err != nil {
		return err
	}

	if m.SDE == nil {
		log.Warnf("No SDE binding supplied; using in-memory simulation")
		m.SDE = sim.NewSDE()
	}
	m.Device = device.NewDevice(*cfg, m.SDE)

	// Preload a pipeline when the chassis config names a P4Info file
	if p4infoPath != "" {
		info, err := utils.LoadP4Info(p4infoPath)
		if err != nil {
			return err
		}
		fpc := &p4api.ForwardingPipelineConfig{P4Info: info}
		if err = m.Device.SetPipelineConfig(fpc); err != nil {
			return err
		}
	}

	// Starts NB server
	err = m.startNorthboundServer()
	if err != nil {
		return err
	}
	return nil
}

// startNorthboundServer starts the northbound gRPC server
func (m *Manager) startNorthboundServer() error {
	cfg := northbound.NewInsecureServerConfig(int16(m.Config.GRPCPort))
	if !m.Config.NoTLS {
		cfg = northbound.NewServerCfg(m.Config.CAPath, m.Config.KeyPath, m.Config.CertPath, int16(m.Config.GRPCPort),
			true, northbound.SecurityConfig{})
	}
	s := northbound.NewServer(cfg)
	s.AddService(logging.Service{})
	s.AddService(devsvc.NewService(m.Device))

	doneCh := make(chan error)
	go func() {
		err := s.Serve(func(started string) {
			log.Info("Started NBI on ", started)
			close(doneCh)
		})
		if err != nil {
			doneCh <- err
		}
	}()
	return <-doneCh
}

// Close kills the manager
func (m *Manager) Close() {
	log.Infow("Closing Manager")
}
