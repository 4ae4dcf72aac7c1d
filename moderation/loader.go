package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sourcesync/errors"
	"strings"
)

//go:embed censored/*.txt
var Censored embed.FS

// CensoredDir is the directory of the embedded dictionaries, one file per language.
const CensoredDir = "censored"

// Dictionary is the merged word list with the languages it came from.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary reads every "<lang>.txt" file of dir, one word per line,
// and merges them without duplicates.
func LoadDictionary(fsys fs.FS, dir string) (Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Dictionary{}, err
	}

	var languages []string
	unique := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			return Dictionary{}, fmt.Errorf("%s/%s: %w", dir, entry.Name(), errors.ErrOnlyCensoredFiles)
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return Dictionary{}, err
		}
		// Scanner copes with \r\n files
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				unique[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return Dictionary{}, err
		}
	}
	if len(unique) == 0 {
		return Dictionary{}, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(unique))
	for w := range unique {
		words = append(words, w)
	}
	sort.Strings(words)
	return Dictionary{Words: words, Languages: languages}, nil
}
