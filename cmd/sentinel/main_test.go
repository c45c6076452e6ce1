package main

import (
	"testing"

	"coinsentinel/internal/config"
)

func TestConfigDirFromArgs(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"space form", []string{"run", "--config", "/tmp/custom"}, "/tmp/custom"},
		{"equals form", []string{"run", "--config=/tmp/custom"}, "/tmp/custom"},
		{"last flag wins", []string{"--config", "/tmp/a", "--config=/tmp/b"}, "/tmp/b"},
		{"no flag", []string{"run"}, config.DefaultConfigDir()},
		{"trailing flag without value", []string{"run", "--config"}, config.DefaultConfigDir()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := configDirFromArgs(tc.args); got != tc.want {
				t.Errorf("configDirFromArgs(%v) = %q, want %q", tc.args, got, tc.want)
			}
		})
	}
}
