// Package config loads settings from defaults, an optional .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Client     ClientConfig     `koanf:"client"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port        int    `koanf:"port" validate:"min=1,max=65535"`
	DatabaseURL string `koanf:"database_url"`
	WasmDir     string `koanf:"wasm_dir"`
}

type ClientConfig struct {
	APIBase    string        `koanf:"api_base" validate:"required,url"`
	Timeout    time.Duration `koanf:"timeout" validate:"min=0"`
	ImageField string        `koanf:"image_field" validate:"oneof=images image_url"`
}

type CloudinaryConfig struct {
	CloudName    string `koanf:"cloud_name"`
	UploadPreset string `koanf:"upload_preset"`
	Folder       string `koanf:"folder"`
	BaseURL      string `koanf:"base_url" validate:"required,url"`
}

// Enabled reports whether image hosting has enough settings to upload.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.UploadPreset != ""
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:    8080,
			WasmDir: "./web",
		},
		Client: ClientConfig{
			APIBase:    "http://localhost:8080",
			Timeout:    10 * time.Second,
			ImageField: "images",
		},
		Cloudinary: CloudinaryConfig{
			BaseURL: "https://api.cloudinary.com",
		},
		Log: LogConfig{Level: "info"},
	}
}

// envKeys maps flat environment variable names onto config paths.
var envKeys = map[string]string{
	"PORT":                     "server.port",
	"DATABASE_URL":             "server.database_url",
	"WASM_DIR":                 "server.wasm_dir",
	"API_BASE":                 "client.api_base",
	"API_TIMEOUT":              "client.timeout",
	"IMAGE_FIELD":              "client.image_field",
	"CLOUDINARY_CLOUD_NAME":    "cloudinary.cloud_name",
	"CLOUDINARY_UPLOAD_PRESET": "cloudinary.upload_preset",
	"CLOUDINARY_FOLDER":        "cloudinary.folder",
	"CLOUDINARY_BASE_URL":      "cloudinary.base_url",
	"LOG_LEVEL":                "log.level",
	"LOG_JSON":                 "log.json",
}

// Load reads the configuration. envFiles are optional dotenv files; missing
// ones are skipped. Variables already set in the environment win over them.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok {
				return "", nil
			}
			return path, strings.TrimSpace(value)
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
