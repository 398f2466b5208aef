package schemas

import (
	"embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/bizhealth/internal/models"
)

//go:embed *.toml
var fs embed.FS

// DefaultFrameworkFile is the embedded canonical framework
const DefaultFrameworkFile = "framework.toml"

// GetSchema returns the content of an embedded schema file by name
func GetSchema(name string) ([]byte, error) {
	return fs.ReadFile(name)
}

// DefaultFramework decodes and validates the embedded canonical framework
func DefaultFramework() (*models.Framework, error) {
	data, err := GetSchema(DefaultFrameworkFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded framework: %w", err)
	}
	return ParseFramework(data)
}

// LoadFrameworkFile reads a framework override from disk
func LoadFrameworkFile(path string) (*models.Framework, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read framework file %s: %w", path, err)
	}
	fw, err := ParseFramework(data)
	if err != nil {
		return nil, fmt.Errorf("framework file %s: %w", path, err)
	}
	return fw, nil
}

// ParseFramework decodes framework TOML and checks hierarchy closure
func ParseFramework(data []byte) (*models.Framework, error) {
	var fw models.Framework
	if err := toml.Unmarshal(data, &fw); err != nil {
		return nil, fmt.Errorf("failed to parse framework: %w", err)
	}
	if err := fw.Validate(); err != nil {
		return nil, err
	}
	return &fw, nil
}
