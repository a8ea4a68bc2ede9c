package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/deja/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	for _, ci := range []string{"true", "1"} {
		t.Run("CI="+ci, func(t *testing.T) {
			t.Setenv("CI", ci)

			assert.Equal(t, detector.ModePlain, detector.DetectEnvironment())
		})
	}
}

func TestDetectEnvironment_NoColor(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "1")

	assert.Equal(t, detector.ModePlain, detector.DetectEnvironment())
}

func TestDetectEnvironment_NonForcing(t *testing.T) {
	// Without CI or NO_COLOR the result depends on whether the test runner
	// attached a terminal, so only check the mode is decided.
	t.Setenv("CI", "false")

	mode := detector.DetectEnvironment()
	assert.Contains(t, []detector.OutputMode{detector.ModePretty, detector.ModePlain}, mode)
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag string
		auto detector.OutputMode
		want detector.OutputMode
	}{
		{flag: "auto", auto: detector.ModePretty, want: detector.ModePretty},
		{flag: "auto", auto: detector.ModePlain, want: detector.ModePlain},
		{flag: "", auto: detector.ModePretty, want: detector.ModePretty},
		{flag: "pretty", auto: detector.ModePlain, want: detector.ModePretty},
		{flag: "plain", auto: detector.ModePretty, want: detector.ModePlain},
		{flag: "ci", auto: detector.ModePretty, want: detector.ModePlain},
		{flag: "bogus", auto: detector.ModePretty, want: detector.ModePretty},
	}

	for _, tt := range tests {
		t.Run("flag="+tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.auto, tt.flag))
		})
	}
}
