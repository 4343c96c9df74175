package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "POINT_ACCURACY", "INDEX_STRATEGY", "LINE_TOLERANCE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "3001" || cfg.Accuracy != 0.005 || cfg.IndexStrategy != "grid" || cfg.LineTolerance != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("POINT_ACCURACY", "0.01")
	t.Setenv("CLASSIFIER_WORKERS", "3")
	t.Setenv("READ_TIMEOUT", "not-a-number")

	cfg := Load()
	if cfg.Port != "8080" || cfg.Accuracy != 0.01 || cfg.ClassifierWorkers != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReadTimeout != 10 {
		t.Errorf("ReadTimeout = %d, want default 10", cfg.ReadTimeout)
	}
}
