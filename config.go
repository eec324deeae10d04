package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	SaveDirectory string
	StartMenu     bool
	Confirmations bool
	DefaultShape  ShapeType
}

func defaultConfig() *Config {
	return &Config{
		StartMenu:     true,
		Confirmations: true,
		DefaultShape:  ShapeRectangle,
	}
}

func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultConfig()
	}
	file, err := os.Open(filepath.Join(homeDir, ".flowkitrc"))
	if err != nil {
		return defaultConfig()
	}
	defer file.Close()
	return parseConfig(file, homeDir)
}

// parseConfig reads key=value lines. Unknown keys and malformed lines
// are skipped so an rc file written by a newer build still loads.
func parseConfig(r io.Reader, homeDir string) *Config {
	config := defaultConfig()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = resolveSaveDir(value, homeDir)
		case "startmenu", "start_menu":
			config.StartMenu = strings.EqualFold(value, "true")
		case "confirmations", "confirm":
			config.Confirmations = strings.EqualFold(value, "true")
		case "defaultshape", "default_shape":
			shape := ShapeType(strings.ToLower(value))
			if _, ok := baseStyles[shape]; ok {
				config.DefaultShape = shape
			}
		}
	}

	return config
}

func resolveSaveDir(value, homeDir string) string {
	if strings.HasPrefix(value, "~") {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
