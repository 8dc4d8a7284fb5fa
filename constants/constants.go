package constants

import "os"

func GetPatternsPath() string {
	path := os.Getenv("PATTERNS_PATH")
	if path != "" {
		return path
	}
	return "./json-data/drum_patterns.json"
}

func GetAssetsDir() string {
	path := os.Getenv("ASSETS_PATH")
	if path != "" {
		return path
	}
	return "./assets"
}

func GetOutputDir() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// 16th notes over 4 bars of 4/4
const (
	StepsPerBeat = 4
	BeatsPerBar  = 4
	Bars         = 4
	StepCount    = StepsPerBeat * BeatsPerBar * Bars
)

const DefaultBPM = 120

const DefaultSampleRate = 44100

// directory under the assets dir holding <genre>/<role-folder>/ clips
const DefaultSamplesRoot = "drum_samples"

const StemsDirPrefix = "stems-"
