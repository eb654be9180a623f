package registry

import (
	"regexp"
	"strings"

	"github.com/modkit/modkit/internal/moderr"
)

// MaxNameLength 是模块名的最大长度。
const MaxNameLength = 50

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// reservedNames 与宿主应用的顶层目录冲突，比较时忽略大小写。
var reservedNames = map[string]struct{}{
	"app":       {},
	"bootstrap": {},
	"config":    {},
	"database":  {},
	"lang":      {},
	"modules":   {},
	"public":    {},
	"resources": {},
	"routes":    {},
	"storage":   {},
	"tests":     {},
	"vendor":    {},
}

// ValidateName 校验模块名，失败时返回 InvalidModuleName。
func ValidateName(name string) error {
	switch {
	case name == "":
		return moderr.InvalidName(name, "name is required")
	case len(name) > MaxNameLength:
		return moderr.InvalidName(name, "name must be at most 50 characters")
	case !namePattern.MatchString(name):
		return moderr.InvalidName(name, "name must start with a letter and contain only letters, digits, '_' or '-'")
	}
	if _, reserved := reservedNames[strings.ToLower(name)]; reserved {
		return moderr.InvalidName(name, "name is reserved")
	}
	return nil
}
