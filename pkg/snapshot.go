package logicdb

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/vilterp/logicdb/pkg/lang"
	"github.com/vilterp/logicdb/pkg/parse"
)

var (
	factsBucket = []byte("__facts__")
	rulesBucket = []byte("__rules__")
	metaBucket  = []byte("__meta__")

	sourceKey    = []byte("source")
	numFactsKey  = []byte("num_facts")
	numRulesKey  = []byte("num_rules")
	createdAtKey = []byte("created_at")
)

// SnapshotMeta describes where a snapshot came from.
type SnapshotMeta struct {
	Source    string
	NumFacts  int
	NumRules  int
	CreatedAt time.Time
}

// SaveSnapshot writes kb to a bolt file at path, replacing any knowledge base
// already stored there. Facts and rules are stored as their text lines,
// keyed by position.
func SaveSnapshot(path string, kb *lang.KnowledgeBase, source string) error {
	boltDB, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return errors.Wrap(err, "opening snapshot")
	}
	defer boltDB.Close()

	facts := kb.Facts()
	rules := kb.Rules()
	return boltDB.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{factsBucket, rulesBucket, metaBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		factsB := tx.Bucket(factsBucket)
		for idx, fact := range facts {
			if err := factsB.Put(encodeInteger(idx), []byte(fact.String())); err != nil {
				return err
			}
		}
		rulesB := tx.Bucket(rulesBucket)
		for idx, rule := range rules {
			if err := rulesB.Put(encodeInteger(idx), []byte(rule.String())); err != nil {
				return err
			}
		}

		metaB := tx.Bucket(metaBucket)
		if err := metaB.Put(sourceKey, []byte(source)); err != nil {
			return err
		}
		if err := metaB.Put(numFactsKey, encodeInteger(len(facts))); err != nil {
			return err
		}
		if err := metaB.Put(numRulesKey, encodeInteger(len(rules))); err != nil {
			return err
		}
		createdAt, _ := time.Now().UTC().MarshalText()
		return metaB.Put(createdAtKey, createdAt)
	})
}

// OpenSnapshot loads a knowledge base written by SaveSnapshot. The stored
// lines go through the same parser as a text file.
func OpenSnapshot(path string) (*lang.KnowledgeBase, error) {
	kb, _, err := openSnapshot(path)
	return kb, err
}

// ReadSnapshotMeta returns a snapshot's metadata without parsing it.
func ReadSnapshotMeta(path string) (*SnapshotMeta, error) {
	boltDB, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening snapshot")
	}
	defer boltDB.Close()

	var meta *SnapshotMeta
	err = boltDB.View(func(tx *bolt.Tx) error {
		var err error
		meta, err = readMeta(tx)
		return err
	})
	return meta, err
}

func openSnapshot(path string) (*lang.KnowledgeBase, *SnapshotMeta, error) {
	boltDB, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening snapshot")
	}
	defer boltDB.Close()

	var lines []string
	var meta *SnapshotMeta
	if err := boltDB.View(func(tx *bolt.Tx) error {
		var err error
		meta, err = readMeta(tx)
		if err != nil {
			return err
		}
		factLines, err := readLines(tx, factsBucket)
		if err != nil {
			return err
		}
		ruleLines, err := readLines(tx, rulesBucket)
		if err != nil {
			return err
		}
		if len(factLines) != meta.NumFacts || len(ruleLines) != meta.NumRules {
			return fmt.Errorf(
				"snapshot %s is inconsistent: meta says %d facts and %d rules; found %d and %d",
				path, meta.NumFacts, meta.NumRules, len(factLines), len(ruleLines),
			)
		}
		lines = append(factLines, ruleLines...)
		return nil
	}); err != nil {
		return nil, nil, err
	}

	kb, err := parse.ParseKnowledgeBaseLines(lines)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading snapshot %s", path)
	}
	return kb, meta, nil
}

func readMeta(tx *bolt.Tx) (*SnapshotMeta, error) {
	metaB := tx.Bucket(metaBucket)
	if metaB == nil {
		return nil, ErrNotSnapshot
	}
	meta := &SnapshotMeta{
		Source:   string(metaB.Get(sourceKey)),
		NumFacts: decodeInteger(metaB.Get(numFactsKey)),
		NumRules: decodeInteger(metaB.Get(numRulesKey)),
	}
	if createdAt := metaB.Get(createdAtKey); createdAt != nil {
		if err := meta.CreatedAt.UnmarshalText(createdAt); err != nil {
			return nil, errors.Wrap(err, "reading snapshot creation time")
		}
	}
	return meta, nil
}

func readLines(tx *bolt.Tx, bucket []byte) ([]string, error) {
	b := tx.Bucket(bucket)
	if b == nil {
		return nil, ErrNotSnapshot
	}
	var lines []string
	err := b.ForEach(func(_ []byte, line []byte) error {
		lines = append(lines, string(line))
		return nil
	})
	return lines, err
}

// Encodes an integer in 4 big-endian bytes, so bolt's byte ordering of
// keys matches numeric order.
func encodeInteger(val int) []byte {
	intBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(intBytes, uint32(val))
	return intBytes
}

func decodeInteger(intBytes []byte) int {
	if len(intBytes) != 4 {
		return 0
	}
	return int(binary.BigEndian.Uint32(intBytes))
}
