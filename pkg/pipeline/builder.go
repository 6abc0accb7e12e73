// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
)

var log = logging.GetLogger("pipeline")

// p4cConf mirrors the compiler's .conf JSON output. Only the fields the
// builder consumes are declared.
type p4cConf struct {
	ChipList []struct {
		Chip string `json:"chip"`
	} `json:"chip_list"`
	P4Devices []p4cDevice `json:"p4_devices"`
}

type p4cDevice struct {
	DeviceID   uint32       `json:"device-id"`
	P4Programs []p4cProgram `json:"p4_programs"`
	PktIOArgs  *p4cPktIO    `json:"pktio-args"`
}

type p4cProgram struct {
	ProgramName string        `json:"program-name"`
	TdiConfig   string        `json:"tdi-config"`
	BfrtConfig  string        `json:"bfrt-config"`
	P4Pipelines []p4cPipeline `json:"p4_pipelines"`
}

type p4cPipeline struct {
	PipelineName string   `json:"p4_pipeline_name"`
	Context      string   `json:"context"`
	Config       string   `json:"config"`
	PipeScope    []uint32 `json:"pipe_scope"`
}

type p4cPktIO struct {
	Ports  []uint32 `json:"ports"`
	NbRxqs uint32   `json:"nb_rxqs"`
	NbTxqs uint32   `json:"nb_txqs"`
}

// Pack reads a p4c .conf file, slurps the artifacts it references and writes
// the serialized pipeline descriptor to outPath. Artifact paths in the conf
// are resolved relative to the conf file's directory.
func Pack(confPath string, outPath string) error {
	confData, err := os.ReadFile(confPath)
	if err != nil {
		return errors.NewInvalid("unable to read conf file %s: %v", confPath, err)
	}
	var conf p4cConf
	if err = json.Unmarshal(confData, &conf); err != nil {
		return errors.NewInvalid("unable to parse conf file %s: %v", confPath, err)
	}
	if len(conf.P4Devices) != 1 {
		return errors.NewInvalid("conf file %s must describe exactly one device; found %d", confPath, len(conf.P4Devices))
	}
	device := conf.P4Devices[0]
	if len(device.P4Programs) != 1 {
		return errors.NewInvalid("conf file %s must describe exactly one program; found %d", confPath, len(device.P4Programs))
	}
	program := device.P4Programs[0]

	confDir := filepath.Dir(confPath)
	config := &Config{P4Name: program.ProgramName}

	// Newer compilers emit tdi-config, older ones bfrt-config; both carry
	// the runtime info artifact.
	runtimeInfoPath := program.TdiConfig
	if runtimeInfoPath == "" {
		runtimeInfoPath = program.BfrtConfig
	}
	if runtimeInfoPath == "" {
		return errors.NewInvalid("program %q carries neither tdi-config nor bfrt-config", program.ProgramName)
	}
	if config.BFRuntimeInfo, err = readArtifact(confDir, runtimeInfoPath); err != nil {
		return err
	}

	if device.PktIOArgs != nil {
		config.PacketIO = &PacketIOConfig{
			Ports:  device.PktIOArgs.Ports,
			NbRxqs: device.PktIOArgs.NbRxqs,
			NbTxqs: device.PktIOArgs.NbTxqs,
		}
	}

	for _, pipeline := range program.P4Pipelines {
		profile := &Profile{
			Name:      pipeline.PipelineName,
			PipeScope: pipeline.PipeScope,
		}
		if profile.Context, err = readArtifact(confDir, pipeline.Context); err != nil {
			return err
		}
		if profile.Binary, err = readArtifact(confDir, pipeline.Config); err != nil {
			return err
		}
		config.Profiles = append(config.Profiles, profile)
	}

	data, err := config.Marshal()
	if err != nil {
		return err
	}
	if err = os.WriteFile(outPath, data, 0644); err != nil {
		return errors.NewInternal("unable to write %s: %v", outPath, err)
	}
	log.Infof("Packed pipeline %q: %d profiles, %d bytes", config.P4Name, len(config.Profiles), len(data))
	return nil
}

func readArtifact(confDir string, path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(confDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalid("unable to read artifact %s: %v", path, err)
	}
	return data, nil
}

// Unpack deserializes the descriptor read from binPath and lays its
// artifacts out under dir as <dir>/<p4_name>/bfrt.json plus, per profile,
// <dir>/<p4_name>/<profile>/context.json and <dir>/<p4_name>/<profile>/tofino.bin.
func Unpack(binPath string, dir string) error {
	data, err := os.ReadFile(binPath)
	if err != nil {
		return errors.NewInvalid("unable to read pipeline descriptor %s: %v", binPath, err)
	}
	config, err := Unmarshal(data)
	if err != nil {
		return err
	}

	programDir := filepath.Join(dir, config.P4Name)
	if err = os.MkdirAll(programDir, 0755); err != nil {
		return errors.NewInternal("unable to create %s: %v", programDir, err)
	}
	if err = os.WriteFile(filepath.Join(programDir, "bfrt.json"), config.BFRuntimeInfo, 0644); err != nil {
		return errors.NewInternal("unable to write bfrt.json: %v", err)
	}

	for _, profile := range config.Profiles {
		profileDir := filepath.Join(programDir, profile.Name)
		if err = os.MkdirAll(profileDir, 0755); err != nil {
			return errors.NewInternal("unable to create %s: %v", profileDir, err)
		}
		if err = os.WriteFile(filepath.Join(profileDir, "context.json"), profile.Context, 0644); err != nil {
			return errors.NewInternal("unable to write context.json: %v", err)
		}
		if err = os.WriteFile(filepath.Join(profileDir, "tofino.bin"), profile.Binary, 0644); err != nil {
			return errors.NewInternal("unable to write tofino.bin: %v", err)
		}
	}
	log.Infof("Unpacked pipeline %q into %s", config.P4Name, programDir)
	return nil
}
