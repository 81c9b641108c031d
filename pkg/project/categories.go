package project

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/sanchul-dev/sanchul/pkg/debug"
)

// CategoryPlaceholder is the single row shown when no category list file
// exists.
const CategoryPlaceholder = "공통"

// LoadCategoryList reads a newline-delimited category file. Files saved by
// legacy tools arrive in CP949; content that does not decode as UTF-8 is
// retried as CP949. A missing file yields the single placeholder entry.
func LoadCategoryList(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Error("category list %s: %v", path, err)
		}
		return []string{CategoryPlaceholder}
	}

	if !utf8.Valid(data) {
		decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
		if err != nil {
			debug.Error("category list %s: cp949 decode: %v", path, err)
			return []string{CategoryPlaceholder}
		}
		data = decoded
	}

	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return []string{CategoryPlaceholder}
	}
	return out
}
