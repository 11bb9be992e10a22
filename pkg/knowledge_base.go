package logicdb

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/vilterp/logicdb/pkg/lang"
	"github.com/vilterp/logicdb/pkg/parse"
)

// boltMagic sits right after the page header of a bolt file's first meta page.
const (
	boltMagic       = 0xED0CDAED
	boltMagicOffset = 16
)

// LoadKnowledgeBase reads a knowledge base from a text file, or from a
// snapshot written by SaveSnapshot.
func LoadKnowledgeBase(path string) (*lang.KnowledgeBase, error) {
	isSnapshot, err := isSnapshotFile(path)
	if err != nil {
		return nil, err
	}
	if isSnapshot {
		return OpenSnapshot(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening knowledge base")
	}
	defer file.Close()

	kb, err := parse.ParseKnowledgeBase(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return kb, nil
}

func isSnapshotFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, errors.Wrap(err, "opening knowledge base")
	}
	defer file.Close()

	header := make([]byte, boltMagicOffset+4)
	if _, err := io.ReadFull(file, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, errors.Wrap(err, "reading knowledge base")
	}
	return binary.LittleEndian.Uint32(header[boltMagicOffset:]) == boltMagic, nil
}
