// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global Settings
	once   sync.Once

	validate = validator.New()
)

// Load ensures the settings are loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		Global, err = loadInternal()
	})
	return err
}

func loadInternal() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".kodiak", "kodiak.yaml")
	// create it if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf(" First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return Settings{}, err
		}
	}
	return LoadFrom(configPath)
}

// LoadFrom reads one settings file, applies environment overrides, and
// validates the result. Tests use this instead of the Global singleton.
func LoadFrom(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read the settings file: %w", err)
	}
	if err = yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse the settings file: %w", err)
	}

	applyEnv(&s)
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// FromEnv builds settings from defaults plus environment overrides,
// skipping the yaml file entirely.
func FromEnv() (Settings, error) {
	s := DefaultSettings()
	applyEnv(&s)
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// applyEnv overlays the recognized environment variables onto s.
func applyEnv(s *Settings) {
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		s.Logging.Level = strings.ToUpper(v)
	}
	if v, ok := lookupEnv("LOG_FORMAT"); ok {
		s.Logging.Format = strings.ToLower(v)
	}
	if v, ok := lookupEnv("LOG_FILE_PATH"); ok {
		s.Logging.FilePath = v
	}
	if v, ok := lookupEnv("OTEL_LOGS_EXPORT_MODE"); ok {
		s.Logging.ExportMode = strings.ToLower(v)
	}
	if v, ok := lookupEnv("OTEL_ENDPOINT"); ok {
		s.Logging.Endpoint = v
	}
	if v, ok := lookupEnv("OTEL_SERVICE_NAME"); ok {
		s.Logging.ServiceName = v
	}
	if v, ok := lookupEnv("OTEL_EXPORT_TIMEOUT"); ok {
		if ms, err := strconv.Atoi(v); err == nil {
			s.Logging.ExportTimeoutMillis = ms
		}
	}
	if v, ok := lookupEnv("INTERFACE_TYPE"); ok {
		s.Interface.Type = InterfaceType(strings.ToLower(v))
	}
	if v, ok := lookupEnv("PROFILER_ACTIVE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Profiler.Active = b
		}
	}
	if v, ok := lookupEnv("PROFILER_COLLECT_MEMORY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Profiler.CollectMemory = b
		}
	}
}

// lookupEnv is os.LookupEnv with empty values treated as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the settings directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
