package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where keyrotate looks for its optional config file when
// --config is not given.
const DefaultPath = "keyrotate.yaml"

// Config holds the runtime configuration
type Config struct {
	Path         string
	ExplicitPath bool // --config was passed; a missing file is then an error
	Logger       *logging.Logger
	MetricsFile  string
	Definition   *Definition
}

// Definition represents the keyrotate.yaml structure. Every field is
// optional; command-line flags take precedence.
type Definition struct {
	// Store selects the credential store backend: "file" (the AWS shared
	// credentials file) or "keyring" (the OS credential store).
	Store string `yaml:"store"`

	// CredentialsFile overrides the shared credentials file location.
	// Empty means AWS_SHARED_CREDENTIALS_FILE or the SDK default path.
	CredentialsFile string `yaml:"credentials_file"`

	// Region for IAM/STS calls. IAM is a global service; this mostly
	// matters for regional STS endpoints.
	Region string `yaml:"region"`

	Verify VerifyConfig `yaml:"verify"`
	Cron   CronConfig   `yaml:"cron"`
}

// VerifyConfig bounds the new-key verification loop.
type VerifyConfig struct {
	Attempts     int `yaml:"attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

// CronConfig configures the install-cron command.
type CronConfig struct {
	// Hour is the fixed hour of day for the daily rotation; the minute is
	// randomized at install time.
	Hour int `yaml:"hour"`
}

// DefaultDefinition returns the configuration used when no file is present.
func DefaultDefinition() *Definition {
	return &Definition{
		Store: "file",
		Verify: VerifyConfig{
			Attempts:     20,
			DelaySeconds: 3,
		},
		Cron: CronConfig{
			Hour: 4,
		},
	}
}

// Load reads and validates the keyrotate.yaml file. A missing file at the
// default path is not an error; the defaults apply.
func (c *Config) Load() error {
	if c.Path == "" {
		c.Path = DefaultPath
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) && !c.ExplicitPath {
			c.Definition = DefaultDefinition()
			return nil
		}
		if os.IsNotExist(err) {
			return kerrors.ConfigError{
				Field:      "config",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or drop --config to use built-in defaults",
			}
		}
		return kerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := validateSchema(data); err != nil {
		return err
	}

	def := DefaultDefinition()
	if err := yaml.Unmarshal(data, def); err != nil {
		return kerrors.ConfigError{
			Field:      "config",
			Value:      c.Path,
			Message:    fmt.Sprintf("invalid YAML: %v", err),
			Suggestion: "Check indentation and syntax",
		}
	}

	c.Definition = def
	return nil
}

// validateSchema checks the raw YAML document against the embedded JSON
// schema before it is bound to the Definition struct, so typos and
// out-of-range values produce field-level messages.
func validateSchema(data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return kerrors.ConfigError{
			Field:   "config",
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}
	if doc == nil {
		// Empty file; defaults apply.
		return nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return kerrors.ConfigError{
			Field:      "config",
			Message:    "invalid configuration: " + strings.Join(problems, "; "),
			Suggestion: "Valid fields: store, credentials_file, region, verify.attempts, verify.delay_seconds, cron.hour",
		}
	}

	return nil
}
