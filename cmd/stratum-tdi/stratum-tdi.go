// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package main is the main entry point for starting the stratum-tdi daemon
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/onosproject/onos-lib-go/pkg/cli"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/stratum-tdi/pkg/manager"
	"github.com/spf13/cobra"
)

const (
	caPathFlag        = "caPath"
	keyPathFlag       = "keyPath"
	certPathFlag      = "certPath"
	grpcPortFlag      = "grpcPort"
	noTLSFlag         = "no-tls"
	chassisConfigFlag = "chassis-config"
)

var log = logging.GetLogger()

// The main entry point
func main() {
	cmd := &cobra.Command{
		Use:  "stratum-tdi",
		RunE: runRootCommand,
	}
	cmd.Flags().String(caPathFlag, "", "path to CA certificate")
	cmd.Flags().String(keyPathFlag, "", "path to server private key")
	cmd.Flags().String(certPathFlag, "", "path to server certificate")
	cmd.Flags().Int(grpcPortFlag, 9339, "gRPC port for the northbound API")
	cmd.Flags().Bool(noTLSFlag, false, "serve northbound API without TLS")
	cmd.Flags().String(chassisConfigFlag, "/etc/stratum/chassis.yaml", "chassis configuration YAML file")
	cli.Run(cmd)
}

func runRootCommand(cmd *cobra.Command, args []string) error {
	caPath, _ := cmd.Flags().GetString(caPathFlag)
	keyPath, _ := cmd.Flags().GetString(keyPathFlag)
	certPath, _ := cmd.Flags().GetString(certPathFlag)
	grpcPort, _ := cmd.Flags().GetInt(grpcPortFlag)
	noTLS, _ := cmd.Flags().GetBool(noTLSFlag)
	chassisPath, _ := cmd.Flags().GetString(chassisConfigFlag)

	log.Info("Starting stratum-tdi")
	mgr := manager.NewManager(manager.Config{
		CAPath:      caPath,
		KeyPath:     keyPath,
		CertPath:    certPath,
		GRPCPort:    grpcPort,
		NoTLS:       noTLS,
		ChassisPath: chassisPath,
	})
	mgr.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	mgr.Close()
	return nil
}
