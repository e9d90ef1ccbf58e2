package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadLayered decodes <dir>/base.yaml, then <dir>/<env>.yaml on top of it, into out.
// ${VAR} placeholders are resolved from the process environment first and
// <dir>/secrets.env second; unresolved ones are left in place for validation to catch.
// Fields absent from every file keep the values already in out.
func LoadLayered(dir, env string, out any) error {
	if dir == "" {
		dir = "config"
	}

	merged, err := readYAML(filepath.Join(dir, "base.yaml"))
	if err != nil {
		return fmt.Errorf("failed to load base.yaml: %w", err)
	}

	if env != "" && env != "base" {
		overlay, err := readYAML(filepath.Join(dir, env+".yaml"))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// 环境配置可选
		case err != nil:
			return fmt.Errorf("failed to load %s.yaml: %w", env, err)
		default:
			merged = mergeMaps(merged, overlay)
		}
	}

	secrets, err := readEnvFile(filepath.Join(dir, "secrets.env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load secrets.env: %w", err)
	}
	resolve(merged, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := secrets[key]
		return v, ok
	})

	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal merged config: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// readEnvFile 解析 KEY=VALUE 行，忽略空行与 # 注释，去掉包裹的引号
func readEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	env := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		env[strings.TrimSpace(key)] = value
	}
	return env, sc.Err()
}

// mergeMaps returns base with overlay applied; nested maps merge recursively.
func mergeMaps(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		bm, ok1 := out[k].(map[string]any)
		om, ok2 := v.(map[string]any)
		if ok1 && ok2 {
			out[k] = mergeMaps(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

// resolve 原地替换所有字符串值中的 ${VAR}
func resolve(m map[string]any, lookup func(string) (string, bool)) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			m[k] = placeholder.ReplaceAllStringFunc(val, func(match string) string {
				if s, ok := lookup(match[2 : len(match)-1]); ok {
					return s
				}
				return match
			})
		case map[string]any:
			resolve(val, lookup)
		}
	}
}

// GetEnv 获取环境变量，未设置时返回默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv 从 CONFIG_ENV 读取环境名，默认 local
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
