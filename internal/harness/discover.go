package harness

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Discoverer counts the test functions declared under a directory tree.
// The count is syntactic: it reflects what a reader of the test files
// would expect to run, not what the test binary dynamically collects.
type Discoverer interface {
	Count(root string) (int, error)
}

// StaticScanner counts test declarations by scanning _test.go files
// line by line. Files that cannot be opened or read are skipped
// silently; a partially read file contributes the declarations seen
// before the read failed.
type StaticScanner struct{}

// testDecl matches top-level test function declarations. TestMain is
// the test binary's entry hook, not a test case.
var testDecl = regexp.MustCompile(`^func (Test\w*)\s*\(`)

// Count walks root and counts `func TestXxx(` declarations in files
// named *_test.go. Hidden directories, testdata, and vendor trees are
// not descended into.
func (StaticScanner) Count(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry; skip it and anything below it.
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		total += countTestDecls(path)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func countTestDecls(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		m := testDecl.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if m[1] == "TestMain" {
			continue
		}
		n++
	}
	// Scan errors are deliberately ignored; whatever was counted stands.
	return n
}
