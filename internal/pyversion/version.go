package pyversion

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrPrerelease 预发布版本（a/b/rc/dev）不参与排序，由调用方过滤
var ErrPrerelease = errors.New("pre-release version")

// shapePattern 只接受 X.Y 或 X.Y.Z，可带预发布后缀
var shapePattern = regexp.MustCompile(`^v?\d+\.\d+(\.\d+)?(-?(a|b|c|rc|alpha|beta|dev|post)\d*)?$`)

// Version Python 解释器版本号 (major.minor.patch)
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse 解析版本字符串，X.Y 形式补齐为 X.Y.0
func Parse(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Python ")
	if !shapePattern.MatchString(s) {
		return Version{}, fmt.Errorf("无效的版本号: %q", raw)
	}

	v, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("无效的版本号 %q: %w", raw, err)
	}
	if v.Prerelease() != "" {
		return Version{}, fmt.Errorf("%s: %w", raw, ErrPrerelease)
	}

	segs := v.Segments()
	return Version{Major: segs[0], Minor: segs[1], Patch: segs[2]}, nil
}

// MustParse 解析失败时 panic，仅用于常量表
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease 检查版本字符串是否带预发布标记
func IsPrerelease(raw string) bool {
	v, err := goversion.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// String 返回规范化后的 major.minor.patch
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MajorMinor 返回前两段，例如 3.11
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// IsZero 检查是否为零值
func (v Version) IsZero() bool {
	return v == Version{}
}

func (v Version) semver() *goversion.Version {
	return goversion.Must(goversion.NewVersion(v.String()))
}

// Compare 按分量整数比较，返回 -1/0/1
func Compare(a, b Version) int {
	return a.semver().Compare(b.semver())
}

// Sort 升序排序（原地）
func Sort(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// SortDesc 降序排序（原地）
func SortDesc(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}

// Unique 去重并保持首次出现的顺序
func Unique(versions []Version) []Version {
	seen := make(map[Version]struct{}, len(versions))
	result := make([]Version, 0, len(versions))
	for _, v := range versions {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// ParseAll 解析字符串列表，跳过无法解析及预发布的条目
func ParseAll(raws []string) []Version {
	result := make([]Version, 0, len(raws))
	for _, raw := range raws {
		if v, err := Parse(raw); err == nil {
			result = append(result, v)
		}
	}
	return result
}

// Strings 转换为字符串列表
func Strings(versions []Version) []string {
	result := make([]string, len(versions))
	for i, v := range versions {
		result[i] = v.String()
	}
	return result
}

// Exclude 返回不在 excluded 中的版本
func Exclude(versions, excluded []Version) []Version {
	skip := make(map[Version]struct{}, len(excluded))
	for _, v := range excluded {
		skip[v] = struct{}{}
	}
	result := make([]Version, 0, len(versions))
	for _, v := range versions {
		if _, ok := skip[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}
