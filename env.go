package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LookupEnvFunc resolves an environment variable. The error return lets
// sources that read lazily, like EnvFileLookup, report failures at
// lookup time.
type LookupEnvFunc func(key string) (value string, ok bool, err error)

// OSLookupEnv reads the process environment. It is the default lookup.
func OSLookupEnv(key string) (string, bool, error) {
	val, ok := os.LookupEnv(key)
	return val, ok, nil
}

// MapLookup serves lookups from a fixed map. Useful in tests and for
// synthetic environments.
func MapLookup(data map[string]string) LookupEnvFunc {
	return func(key string) (string, bool, error) {
		val, ok := data[key]
		return val, ok, nil
	}
}

// EnvFileLookup reads KEY=VAL pairs from a dotenv-style file, once, on
// first lookup. Blank lines and lines starting with # or // are
// ignored.
func EnvFileLookup(path string) LookupEnvFunc {
	var data map[string]string
	var readErr error
	return func(key string) (string, bool, error) {
		if data == nil && readErr == nil {
			data, readErr = parseEnvFile(path)
		}
		if readErr != nil {
			return "", false, readErr
		}
		val, ok := data[key]
		return val, ok, nil
	}
}

func parseEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data := map[string]string{}
	scanner := bufio.NewScanner(file)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.Errorf("error on line %d: not of form KEY=VAL", i)
		}
		data[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
