package docs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._+-]*$`)

// NormalizeVersion 将版本标识规范化为缓存分区键：去掉空白和一个 "go" 前缀。
// go1.21.0、1.21.0 与 " go1.21.0 " 都映射为 1.21.0。
func NormalizeVersion(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "go")
	if v == "" || !versionPattern.MatchString(v) || strings.Contains(v, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}
	return v, nil
}

// releaseLine 解析版本的 major.minor，例如 1.21rc2 → (1, 21)。
func releaseLine(version string) (major, minor int, ok bool) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
