// Package pagestore keeps the downloaded pages of one chapter in a working
// directory. Page order is encoded in the filenames as
// <volume>-<page>-<token>.<ext> and recovered from them, so a directory
// left behind by an interrupted run still describes itself.
package pagestore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"dolabella/internal/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var filePattern = regexp.MustCompile(`^(\S+)-(\S+)-(\S+)$`)

var (
	ErrInvalidVolume = errors.New("volume label cannot be encoded in a page filename")
	ErrInvalidPage   = errors.New("page index must be 1 or greater")
)

type Store struct {
	dir string
}

// New binds a store to dir, creating it and its parents when absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "could not create working directory %s", dir)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// FileName builds the name a page is stored under.
func FileName(page int, volume, token, ext string) string {
	name := fmt.Sprintf("%s-%d-%s", volume, page, token)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// ParseFileName recovers the volume and page index from a stored page name.
func ParseFileName(name string) (string, int, error) {
	ext := filepath.Ext(name)
	// a dotted volume label without extension, e.g. "10.5-3-token"
	if strings.Contains(ext, "-") {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)

	match := filePattern.FindStringSubmatch(stem)
	if match == nil {
		return "", 0, &domain.NamingError{File: name, Reason: "expected <volume>-<page>-<token>"}
	}

	// Store never writes a dash into the volume, a match with one is a mangled page index
	if strings.Contains(match[1], "-") {
		return "", 0, &domain.NamingError{File: name, Reason: "volume contains a dash"}
	}

	page, err := strconv.Atoi(match[2])
	if err != nil {
		return "", 0, &domain.NamingError{File: name, Reason: "page is not a number"}
	}
	if page < 1 {
		return "", 0, &domain.NamingError{File: name, Reason: "page must be 1 or greater"}
	}

	return match[1], page, nil
}

// Store writes data as a new page file and returns its path.
func (s *Store) Store(page int, volume string, data []byte, ext string) (string, error) {
	if page < 1 {
		return "", errors.Wrapf(ErrInvalidPage, "%d", page)
	}
	if volume == "" || strings.ContainsAny(volume, "-") || strings.IndexFunc(volume, isSpace) >= 0 {
		return "", errors.Wrapf(ErrInvalidVolume, "%q", volume)
	}

	ext = strings.TrimPrefix(ext, ".")
	token := strings.ReplaceAll(uuid.NewString(), "-", "")

	target := filepath.Join(s.dir, FileName(page, volume, token, ext))

	// os.Create truncates if the target somehow already exists
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", errors.Wrapf(err, "could not write page %d", page)
	}

	return target, f.Sync()
}

// List maps page index to file path for every file in the directory.
// A file that does not follow the naming pattern fails the whole listing.
func (s *Store) List() (map[int]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	pages := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		_, page, err := ParseFileName(entry.Name())
		if err != nil {
			return nil, err
		}

		if existing, ok := pages[page]; ok {
			return nil, &domain.NamingError{
				File:   entry.Name(),
				Reason: fmt.Sprintf("page %d already stored as %s", page, filepath.Base(existing)),
			}
		}

		pages[page] = filepath.Join(s.dir, entry.Name())
	}

	return pages, nil
}

// Ordered returns the stored page paths sorted by page index.
func (s *Store) Ordered() ([]string, error) {
	pages, err := s.List()
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(pages))
	for i := range pages {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	paths := make([]string, 0, len(indices))
	for _, i := range indices {
		paths = append(paths, pages[i])
	}

	return paths, nil
}

// TotalSize is the sum of all file sizes below the directory.
func (s *Store) TotalSize() (int64, error) {
	var total int64

	err := filepath.WalkDir(s.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		total += info.Size()
		return nil
	})

	return total, err
}

// Cleanup removes the working directory and everything in it.
func (s *Store) Cleanup() error {
	return os.RemoveAll(s.dir)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
