package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ═══════════════════════════════════════════════════════════════════════════
// 配置结构
// ═══════════════════════════════════════════════════════════════════════════

// Config 程序配置
//
// 加载顺序：内置默认值 → 配置文件 → 调用方覆盖（命令行参数等）
type Config struct {
	System SystemSection `koanf:"system" json:"system" yaml:"system"`
	Ask    AskSection    `koanf:"ask" json:"ask" yaml:"ask"`
	Log    LogSection    `koanf:"log" json:"log" yaml:"log"`
}

// SystemSection Actor 系统配置
type SystemSection struct {
	// Name 系统名称
	Name string `koanf:"name" json:"name" yaml:"name"`
	// Workers Actor 工作线程数，0 表示 CPU 核数
	Workers int `koanf:"workers" json:"workers" yaml:"workers"`
	// ContinuationWorkers 回调执行池大小，0 表示 CPU 核数
	ContinuationWorkers int `koanf:"continuation_workers" json:"continuation_workers" yaml:"continuation_workers"`
	// AskFailFast 目标不存在时 Ask 立即失败
	AskFailFast bool `koanf:"ask_fail_fast" json:"ask_fail_fast" yaml:"ask_fail_fast"`
}

// AskSection Ask 配置
type AskSection struct {
	// Timeout 默认应答超时，如 "1s"、"250ms"
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
}

// LogSection 日志配置
type LogSection struct {
	// Level debug / info / warn / error
	Level string `koanf:"level" json:"level" yaml:"level"`
	// Format text / json
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		System: SystemSection{Name: "ask-reply"},
		Ask:    AskSection{Timeout: time.Second},
		Log:    LogSection{Level: "info", Format: "text"},
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 加载
// ═══════════════════════════════════════════════════════════════════════════

// Load 从文件加载配置，path 为空时只使用默认值
// 文件格式由扩展名决定：.yaml / .yml / .json
func Load(path string) (*Config, error) {
	k, err := defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	return unmarshal(k)
}

// LoadBytes 从内存数据加载配置，format 为 yaml 或 json
func LoadBytes(data []byte, format string) (*Config, error) {
	k, err := defaults()
	if err != nil {
		return nil, err
	}

	parser, err := parserFor("config." + format)
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}

	return unmarshal(k)
}

func defaults() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}
	return k, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 校验
// ═══════════════════════════════════════════════════════════════════════════

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.System.Workers < 0 {
		errs = append(errs, fmt.Errorf("system.workers must be >= 0, got %d", c.System.Workers))
	}
	if c.System.ContinuationWorkers < 0 {
		errs = append(errs, fmt.Errorf("system.continuation_workers must be >= 0, got %d", c.System.ContinuationWorkers))
	}
	if c.Ask.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ask.timeout must be positive, got %v", c.Ask.Timeout))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
