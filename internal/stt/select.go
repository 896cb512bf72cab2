// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package stt

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/swictation/swictation/internal/logger"
)

// Variant names the model-size/accelerator tier chosen at startup.
type Variant string

const (
	Variant11BGPU   Variant = "1.1B-gpu"
	Variant06BGPU   Variant = "0.6B-gpu"
	VariantCPUOnly  Variant = "cpu-only"
)

// gpuBudgetThresholds in MB, matching the ladder in the component design.
const (
	thresholdFullGPU = 6 * 1024
	thresholdHalfGPU = 3584 // ~3.5 GB
)

// SelectVariant resolves the model variant to load. If override is anything
// other than "auto" it is used verbatim (converted to a Variant). Otherwise
// the host accelerator is probed and a tier is picked from the VRAM ladder.
// allowed gates the probe subprocess the same way every other external
// command in the daemon is gated.
func SelectVariant(override string, allowed func(string) bool, log logger.Logger) Variant {
	if override != "" && override != "auto" {
		return Variant(override)
	}

	budgetMB, err := probeAcceleratorBudgetMB(allowed)
	if err != nil {
		log.Warning("accelerator probe failed, falling back to cpu-only: %v", err)
		return VariantCPUOnly
	}

	switch {
	case budgetMB >= thresholdFullGPU:
		return Variant11BGPU
	case budgetMB >= thresholdHalfGPU:
		return Variant06BGPU
	default:
		return VariantCPUOnly
	}
}

// Degrade returns the next lower tier after a dry-run load failure, or ""
// once cpu-only has itself failed (startup is then fatal).
func Degrade(v Variant) Variant {
	switch v {
	case Variant11BGPU:
		return Variant06BGPU
	case Variant06BGPU:
		return VariantCPUOnly
	default:
		return ""
	}
}

// ModelPath resolves a variant to its on-disk model file inside dir.
func ModelPath(dir string, v Variant) string {
	name := map[Variant]string{
		Variant11BGPU:  "ggml-model-1.1b-gpu.bin",
		Variant06BGPU:  "ggml-model-0.6b-gpu.bin",
		VariantCPUOnly: "ggml-model-cpu.bin",
	}[v]
	return filepath.Join(dir, name)
}

// LoadWithDegrade picks a variant with SelectVariant, then attempts a dry-run
// Load; on failure it steps down the ladder (1.1B-gpu -> 0.6B-gpu ->
// cpu-only) and retries, until cpu-only itself fails, which is fatal.
func LoadWithDegrade(modelDir, override string, cfg Config, allowed func(string) bool, log logger.Logger) (*Engine, Variant, error) {
	v := SelectVariant(override, allowed, log)
	for {
		path := ModelPath(modelDir, v)
		engine, err := Load(path, cfg, log)
		if err == nil {
			return engine, v, nil
		}
		log.Warning("stt load failed for variant %s: %v", v, err)
		next := Degrade(v)
		if next == "" {
			return nil, v, fmt.Errorf("stt load failed at cpu-only, no further degrade: %w", err)
		}
		v = next
	}
}

func probeAcceleratorBudgetMB(allowed func(string) bool) (int, error) {
	switch runtime.GOOS {
	case "linux", "windows":
		return probeNvidiaVRAMMB(allowed)
	case "darwin":
		return probeDarwinGPUBudgetMB(allowed)
	default:
		return 0, fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

// probeNvidiaVRAMMB shells out to nvidia-smi for total VRAM, used on both
// Linux and Windows per the component design's "query as Linux" rule.
func probeNvidiaVRAMMB(allowed func(string) bool) (int, error) {
	const tool = "nvidia-smi"
	if allowed != nil && !allowed(tool) {
		return 0, fmt.Errorf("command not allowed: %s", tool)
	}
	// #nosec G204 -- tool is allowlisted; no user-controlled arguments.
	out, err := exec.Command(tool, "--query-gpu=memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return 0, fmt.Errorf("nvidia-smi: no output")
	}
	mb, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi: parse memory.total: %w", err)
	}
	return mb, nil
}

// probeDarwinGPUBudgetMB treats 35% of unified memory as the effective GPU
// budget, per the component design.
func probeDarwinGPUBudgetMB(allowed func(string) bool) (int, error) {
	const tool = "sysctl"
	if allowed != nil && !allowed(tool) {
		return 0, fmt.Errorf("command not allowed: %s", tool)
	}
	// #nosec G204 -- tool is allowlisted; no user-controlled arguments.
	out, err := exec.Command(tool, "-n", "hw.memsize").Output()
	if err != nil {
		return 0, fmt.Errorf("sysctl: %w", err)
	}
	bytes, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sysctl: parse hw.memsize: %w", err)
	}
	totalMB := bytes / (1024 * 1024)
	return int(float64(totalMB) * 0.35), nil
}
