package chain

import (
	"fmt"

	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

// Configure applies named parameters to a stage's processor. Recognized
// keys for a compressor: threshold, ratio, knee, attack, release, makeup;
// for a limiter: threshold, attack, release. Keys absent from params leave
// the current value untouched; unknown processor types are an error.
func Configure(stage Stage, params Params) error {
	switch proc := stage.Proc.(type) {
	case *dynamics.Compressor:
		return configureCompressor(stage.Name, proc, params)
	case *dynamics.Limiter:
		return configureLimiter(stage.Name, proc, params)
	default:
		return fmt.Errorf("chain: configure %s: unsupported processor type %T", stage.Name, stage.Proc)
	}
}

func configureCompressor(name string, c *dynamics.Compressor, params Params) error {
	settings := []struct {
		key string
		cur float64
		set func(float64) error
	}{
		{"threshold", c.Threshold(), c.SetThreshold},
		{"ratio", c.Ratio(), c.SetRatio},
		{"knee", c.KneeWidth(), c.SetKneeWidth},
		{"attack", c.Attack(), c.SetAttack},
		{"release", c.Release(), c.SetRelease},
		{"makeup", c.MakeupGain(), c.SetMakeupGain},
	}

	for _, s := range settings {
		err := s.set(params.GetNum(s.key, s.cur))
		if err != nil {
			return fmt.Errorf("chain: configure %s %s: %w", name, s.key, err)
		}
	}

	return nil
}

func configureLimiter(name string, l *dynamics.Limiter, params Params) error {
	settings := []struct {
		key string
		cur float64
		set func(float64) error
	}{
		{"threshold", l.Threshold(), l.SetThreshold},
		{"attack", l.Attack(), l.SetAttack},
		{"release", l.Release(), l.SetRelease},
	}

	for _, s := range settings {
		err := s.set(params.GetNum(s.key, s.cur))
		if err != nil {
			return fmt.Errorf("chain: configure %s %s: %w", name, s.key, err)
		}
	}

	return nil
}
