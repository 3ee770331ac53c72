// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"strings"
	"testing"
)

func TestEngineType_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   EngineType
		wantErr bool
	}{
		{"podman", EngineTypePodman, false},
		{"docker", EngineTypeDocker, false},
		{"auto", EngineTypeAuto, false},
		{"empty", EngineType(""), true},
		{"unknown", EngineType("containerd"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEngineType) {
				t.Errorf("Validate() error should wrap ErrInvalidEngineType, got %v", err)
			}
		})
	}
}

func TestInvalidEngineTypeError_Message(t *testing.T) {
	t.Parallel()

	err := &InvalidEngineTypeError{Value: "containerd"}
	msg := err.Error()
	if !strings.Contains(msg, "containerd") {
		t.Errorf("Error() = %q, want to contain the invalid value", msg)
	}
	if !strings.Contains(msg, "podman") || !strings.Contains(msg, "docker") {
		t.Errorf("Error() = %q, want to list the valid engines", msg)
	}
}

func TestNewEngine_UnknownType(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("containerd")
	if err == nil {
		t.Fatal("NewEngine() error = nil, want invalid type error")
	}
	if !errors.Is(err, ErrInvalidEngineType) {
		t.Errorf("NewEngine() error = %v, want ErrInvalidEngineType", err)
	}
	if engine != nil {
		t.Errorf("NewEngine() engine = %v, want nil", engine)
	}
}

func TestErrEngineNotAvailable_Message(t *testing.T) {
	t.Parallel()

	err := &ErrEngineNotAvailable{Engine: "podman", Reason: "not installed"}
	msg := err.Error()
	if !strings.Contains(msg, "podman") || !strings.Contains(msg, "not installed") {
		t.Errorf("Error() = %q, want engine name and reason", msg)
	}
}
