package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"gopkg.in/yaml.v3"
)

type credentialFile struct {
	Admins []entities.AdminCredential `json:"admins" yaml:"admins"`
}

// FileAdapter implements AdminCredentialRepository on a JSON or YAML file.
// The file is re-read on every call so edits apply without a restart.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates a credential repository reading from path
func NewFileAdapter(path string) repositories.AdminCredentialRepository {
	return &FileAdapter{path: path}
}

// LoadAll reads every admin entry from the file
func (a *FileAdapter) LoadAll(ctx context.Context) ([]entities.AdminCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file credentialFile
	switch strings.ToLower(filepath.Ext(a.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", filepath.Base(a.path), err)
	}

	return file.Admins, nil
}
