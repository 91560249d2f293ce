package platform

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const osReleasePath = "/etc/os-release"

// DetectLinux 检测 Linux 发行版信息
func DetectLinux() (*LinuxInfo, error) {
	file, err := os.Open(osReleasePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseOSRelease(file)
}

// parseOSRelease 解析 os-release 格式内容
func parseOSRelease(r io.Reader) (*LinuxInfo, error) {
	info := &LinuxInfo{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"`)

		switch key {
		case "ID":
			info.Distribution = value
		case "VERSION_ID":
			info.Version = value
		case "NAME":
			if info.Distribution == "" && value != "" {
				// 如果没有 ID，使用 NAME 作为备选
				info.Distribution = strings.ToLower(strings.Fields(value)[0])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if info.Distribution == "" {
		return nil, fmt.Errorf("无法从 os-release 解析发行版")
	}
	if info.Version == "" {
		info.Version = "unknown"
	}
	return info, nil
}
