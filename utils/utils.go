package utils

import (
	"bufio"
	"github.com/twmb/murmur3"
	"os"
	"strings"
)

// HashStrings hashes the sequence as a whole; element boundaries are part of the hash.
func HashStrings(ss ...string) uint64 {
	hash := murmur3.New64()
	for _, s := range ss {
		_, err := hash.Write([]byte(s))
		if err != nil {
			panic(err)
		}
		_, err = hash.Write([]byte{0})
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// ReadList reads one entry per line, skipping blank lines and '#' comments.
func ReadList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var result []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		result = append(result, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
