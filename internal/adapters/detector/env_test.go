package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/weft/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	for _, ci := range []string{"true", "1"} {
		t.Setenv("CI", ci)
		assert.Equal(t, detector.ModePlain, detector.DetectEnvironment())
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		auto detector.OutputMode
		flag string
		want detector.OutputMode
	}{
		{name: "empty keeps auto", auto: detector.ModeStyled, flag: "", want: detector.ModeStyled},
		{name: "auto keeps auto", auto: detector.ModePlain, flag: "auto", want: detector.ModePlain},
		{name: "force styled", auto: detector.ModePlain, flag: "styled", want: detector.ModeStyled},
		{name: "force plain", auto: detector.ModeStyled, flag: "plain", want: detector.ModePlain},
		{name: "unknown keeps auto", auto: detector.ModeStyled, flag: "fancy", want: detector.ModeStyled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.auto, tt.flag))
		})
	}
}
