// Package secrets loads API credentials from a HashiCorp Vault KV store into
// the process environment before configuration is read.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/pkg/retry"
)

// ManagedKeys are the environment variables Vault may provide. Anything else
// stored at the path is ignored.
var ManagedKeys = []string{
	"JAMAI_API_KEY",
	"JAMAI_PROJECT_ID",
	"WHATSAPP_ACCESS_TOKEN",
	"WHATSAPP_PHONE_NUMBER_ID",
	"REDIS_PASSWORD",
	"DB_PASSWORD",
}

type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// VaultResult reports how many managed keys were exported
type VaultResult struct {
	Enabled bool
	Path    string
	Loaded  []string
	Skipped []string
}

func LoadVaultConfigFromEnv() VaultConfig {
	kvVersion := 2
	if parsed, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		kvVersion = parsed
	}
	timeout := 5 * time.Second
	if parsed, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && parsed > 0 {
		timeout = time.Duration(parsed) * time.Millisecond
	}
	mount := os.Getenv("VAULT_MOUNT")
	if mount == "" {
		mount = "secret"
	}
	path := os.Getenv("VAULT_PATH")
	if path == "" {
		path = "clinic-assistant"
	}

	return VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     mount,
		Path:      path,
		KVVersion: kvVersion,
		Timeout:   timeout,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
}

// ApplyVaultSecrets reads the secret at cfg.Path and exports the managed keys it
// holds. Keys already set in the environment win unless cfg.Overwrite is set.
// Values are never logged.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	result := VaultResult{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}
	if cfg.Addr == "" || cfg.Token == "" {
		return result, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN)")
	}

	url, err := buildVaultURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return result, err
	}

	var payload map[string]interface{}
	retryCfg := retry.Config{
		MaxAttempts:     3,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 3 * cfg.Timeout,
	}
	err = retry.DoWithLog(ctx, retryCfg, "vault", func() error {
		var fetchErr error
		payload, fetchErr = fetchSecret(ctx, cfg, url)
		return fetchErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Vault fetch failed, retrying")
	})
	if err != nil {
		return result, err
	}

	data, err := extractVaultData(payload, cfg.KVVersion)
	if err != nil {
		return result, err
	}

	for _, key := range ManagedKeys {
		value, ok := data[key]
		if !ok {
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := os.Setenv(key, stringifyVaultValue(value)); err != nil {
			return result, err
		}
		result.Loaded = append(result.Loaded, key)
	}

	log.Info().
		Str("path", cfg.Path).
		Strs("loaded", result.Loaded).
		Strs("skipped", result.Skipped).
		Msg("Applied Vault secrets")
	return result, nil
}

func fetchSecret(ctx context.Context, cfg VaultConfig, url string) (map[string]interface{}, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s", resp.Status)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func buildVaultURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func extractVaultData(payload map[string]interface{}, kvVersion int) (map[string]interface{}, error) {
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("vault response missing data for KV v%d", kvVersion)
	}
	if kvVersion == 1 {
		return data, nil
	}
	inner, ok := data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response missing data for KV v2")
	}
	return inner, nil
}

func stringifyVaultValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
