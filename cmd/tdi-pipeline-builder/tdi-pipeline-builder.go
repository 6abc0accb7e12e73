// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the pipeline configuration builder,
// which packs p4c compilation artifacts into a single pipeline binary and
// unpacks such binaries back into their artifact files.
package main

import (
	"os"

	"github.com/onosproject/stratum-tdi/pkg/pipeline"
	"github.com/spf13/cobra"
)

const (
	confFileFlag  = "p4c_conf_file"
	binaryFlag    = "tdi_pipeline_config_binary_file"
	unpackDirFlag = "unpack_dir"
)

// The main entry point
func main() {
	if err := getRootCommand().Execute(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func getRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tdi-pipeline-builder",
		Short: "pack or unpack TDI pipeline configuration binaries",
		RunE:  runRootCommand,
	}
	cmd.Flags().String(confFileFlag, "", "path to the p4c conf file describing the compiled program")
	cmd.Flags().String(binaryFlag, "tdi_pipeline_config.pb.bin", "path to the pipeline configuration binary")
	cmd.Flags().String(unpackDirFlag, "", "unpack the binary into this directory instead of packing")
	return cmd
}

func runRootCommand(cmd *cobra.Command, args []string) error {
	confFile, _ := cmd.Flags().GetString(confFileFlag)
	binaryFile, _ := cmd.Flags().GetString(binaryFlag)
	unpackDir, _ := cmd.Flags().GetString(unpackDirFlag)

	if unpackDir != "" {
		return pipeline.Unpack(binaryFile, unpackDir)
	}
	return pipeline.Pack(confFile, binaryFile)
}
