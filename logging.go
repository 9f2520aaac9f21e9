package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// setupLogging points the standard logger at a file, keeping one previous
// generation next to it as <path>.1. The handle is returned so main can
// close it on exit.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("no log file configured")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	prev := path + ".1"
	_ = os.Remove(prev)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, prev); err != nil {
			return nil, fmt.Errorf("rotate %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	log.SetOutput(f)
	return f, nil
}
