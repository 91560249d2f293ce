package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bbq191/pythonest/internal/pyversion"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ConfigValidator 配置验证器
type ConfigValidator struct {
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewConfigValidator 创建新的配置验证器
func NewConfigValidator(logger *logrus.Logger) *ConfigValidator {
	cv := &ConfigValidator{
		validator: validator.New(),
		logger:    logger,
	}

	cv.registerCustomValidators()

	return cv
}

// registerCustomValidators 注册自定义验证规则
func (cv *ConfigValidator) registerCustomValidators() {
	cv.validator.RegisterValidation("pyversion", cv.validatePyVersion)
}

// Validate 验证完整配置
func (cv *ConfigValidator) Validate(settings *Settings) error {
	cv.logger.Debug("开始配置验证")

	if err := cv.validator.Struct(settings); err != nil {
		return cv.formatValidationError(err)
	}

	if settings.Source.UseCustom && settings.Source.CustomURL == "" {
		return fmt.Errorf("配置验证失败:\n  - 启用自定义下载源时 source.custom_url 是必需的")
	}

	// 自定义搜索路径只做存在性检查，不存在时仅警告
	for _, dir := range settings.Search.CustomPaths {
		if _, err := os.Stat(dir); err != nil {
			cv.logger.Warnf("自定义搜索路径不存在: %s", dir)
		}
	}

	cv.logger.Debug("配置验证通过")
	return nil
}

func (cv *ConfigValidator) validatePyVersion(fl validator.FieldLevel) bool {
	_, err := pyversion.Parse(fl.Field().String())
	return err == nil
}

// formatValidationError 格式化验证错误
func (cv *ConfigValidator) formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("字段 %s 是必需的", fieldErr.Namespace()))
		case "url":
			messages = append(messages, fmt.Sprintf("字段 %s 必须是有效的 URL", fieldErr.Namespace()))
		case "gte", "lte":
			messages = append(messages, fmt.Sprintf("字段 %s 超出范围 (%s %s)", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("字段 %s 只能是: %s", fieldErr.Namespace(), fieldErr.Param()))
		case "pyversion":
			messages = append(messages, fmt.Sprintf("字段 %s 必须是有效的 Python 版本号", fieldErr.Namespace()))
		default:
			messages = append(messages, fmt.Sprintf("字段 %s 验证失败: %s", fieldErr.Namespace(), fieldErr.Tag()))
		}
	}

	return fmt.Errorf("配置验证失败:\n  - %s", strings.Join(messages, "\n  - "))
}
