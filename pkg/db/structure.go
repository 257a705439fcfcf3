package db

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/internal/util"
)

var ErrNotFound = errors.New("not found")

var ErrBadID = errors.New("invalid structure id")

var storeIDPattern = regexp.MustCompile(`^(?:[0-9][A-Z0-9]{3}|PDB_[0-9]{5}[A-Z0-9]{3})$`)

// StructureStore keeps downloaded coordinate files as <Dir>/<ID>.pdb.
type StructureStore struct {
	Dir string
}

func NewStructureStore(dir string) (*StructureStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, errors.Wrapf(err, "create structure dir %s", dir)
	}
	return &StructureStore{Dir: dir}, nil
}

func cleanID(id string) (string, error) {
	up := strings.ToUpper(strings.TrimSpace(id))
	if !storeIDPattern.MatchString(up) {
		return "", errors.Wrapf(ErrBadID, "%q", id)
	}
	return up, nil
}

// Path is where the file for id lives, whether or not it exists yet.
func (s *StructureStore) Path(id string) (string, error) {
	clean, err := cleanID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, clean+".pdb"), nil
}

// Save writes through a temp file so readers never see a partial file.
func (s *StructureStore) Save(id string, data []byte) error {
	p, err := s.Path(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, ".structure-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write structure")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close structure")
	}
	return errors.Wrap(os.Rename(tmp.Name(), p), "store structure")
}

func (s *StructureStore) Load(id string) ([]byte, error) {
	p, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "structure %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read structure %s", id)
	}
	return data, nil
}
