package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bbq191/pythonest/internal/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// FileName 配置文件名
const FileName = "settings.json"

// Store 配置存储：整体读取、整体覆盖写入，无文件锁
type Store struct {
	path      string
	validator *ConfigValidator
	logger    *logrus.Logger
}

// NewStore 创建配置存储，path 为空时使用用户配置目录
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	if path == "" {
		dir, err := xdg.NewManager(logger).AppDir(xdg.ConfigHome)
		if err != nil {
			return nil, fmt.Errorf("确定配置目录失败: %w", err)
		}
		path = filepath.Join(dir, FileName)
	}

	return &Store{
		path:      path,
		validator: NewConfigValidator(logger),
		logger:    logger,
	}, nil
}

// Path 返回配置文件路径
func (s *Store) Path() string {
	return s.path
}

// Load 读取配置；文件不存在时返回默认配置
func (s *Store) Load() (*Settings, error) {
	v, err := s.read()
	if err != nil {
		return nil, err
	}
	return s.decode(v)
}

// Save 验证后整体写入配置文件
func (s *Store) Save(settings *Settings) error {
	if err := s.validator.Validate(settings); err != nil {
		return err
	}

	if settings.Search.CustomPaths == nil {
		settings.Search.CustomPaths = []string{}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	s.logger.Debugf("配置已保存: %s", s.path)
	return nil
}

// Set 按点分键更新单个配置项并保存
func (s *Store) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	def, ok := defaultValues()[key]
	if !ok {
		return fmt.Errorf("未知的配置项: %s", key)
	}

	typed, err := convertValue(def, value)
	if err != nil {
		return fmt.Errorf("配置项 %s 的值无效: %w", key, err)
	}

	v, err := s.read()
	if err != nil {
		return err
	}
	v.Set(key, typed)

	settings, err := s.decode(v)
	if err != nil {
		return err
	}
	return s.Save(settings)
}

// Get 返回单个配置项的当前值
func (s *Store) Get(key string) (interface{}, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := defaultValues()[key]; !ok {
		return nil, fmt.Errorf("未知的配置项: %s", key)
	}

	v, err := s.read()
	if err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

func (s *Store) read() (*viper.Viper, error) {
	v := viper.New()
	applyDefaults(v)
	v.SetConfigType("json")

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Debugf("配置文件不存在，使用默认配置: %s", s.path)
			return v, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	s.logger.Debugf("已加载配置文件: %s", v.ConfigFileUsed())
	return v, nil
}

func (s *Store) decode(v *viper.Viper) (*Settings, error) {
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if settings.Search.CustomPaths == nil {
		settings.Search.CustomPaths = []string{}
	}

	if err := s.validator.Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// convertValue 按默认值的类型转换命令行传入的字符串
func convertValue(def interface{}, value string) (interface{}, error) {
	switch def.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int:
		return strconv.Atoi(value)
	case []string:
		if strings.TrimSpace(value) == "" {
			return []string{}, nil
		}
		parts := strings.Split(value, string(os.PathListSeparator))
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result, nil
	default:
		return value, nil
	}
}
