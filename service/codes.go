package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/fulldump/labgrid/collection"
)

const (
	projectCodePrefix = "Q2"
	projectCodeRandom = 4

	projectCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWX"
	projectCodeNumbers = "0123456789"
)

var projectCodeBlacklist = []string{"FUCK", "SHIT"}

// RandomProjectCode returns a fresh code such as Q2AB3X.
func RandomProjectCode() string {
	alphabet := projectCodeLetters + projectCodeNumbers
	for {
		b := make([]byte, projectCodeRandom)
		for i := range b {
			b[i] = alphabet[rand.IntN(len(alphabet))]
		}
		if !slices.Contains(projectCodeBlacklist, string(b)) {
			return projectCodePrefix + string(b)
		}
	}
}

// ParseProjectCode normalizes s to upper case and checks it is a valid
// project code.
func ParseProjectCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(code, projectCodePrefix) || len(code) != len(projectCodePrefix)+projectCodeRandom {
		return "", fmt.Errorf("%s is not a valid project code", code)
	}
	random := code[len(projectCodePrefix):]
	for _, c := range random {
		if !strings.ContainsRune(projectCodeLetters+projectCodeNumbers, c) {
			return "", fmt.Errorf("%s contains invalid characters", code)
		}
	}
	if slices.Contains(projectCodeBlacklist, random) {
		return "", fmt.Errorf("%s contains a blacklisted expression", code)
	}
	return code, nil
}

func measurementCodePrefix(technology, projectCode string) string {
	switch technology {
	case TechnologyProteomics:
		return "MS-" + projectCode + "-"
	default:
		return "NGS-" + projectCode + "-"
	}
}

func formatCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// nextSequence returns the sequence number following the highest code in
// col that starts with prefix.
func nextSequence(col *collection.Collection, prefix string) (int, error) {
	last := 0
	err := col.Find(collection.FindOptions{
		Where: func(row *collection.Row) bool {
			code, _ := row.Data["code"].(string)
			return strings.HasPrefix(code, prefix)
		},
	}, func(row *collection.Row) bool {
		code := row.Data["code"].(string)
		n, err := strconv.Atoi(code[len(prefix):])
		if err == nil && n > last {
			last = n
		}
		return true
	})
	return last + 1, err
}
