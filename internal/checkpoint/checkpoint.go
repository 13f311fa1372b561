// Package checkpoint persists propagation snapshots in a bolt database so
// long runs can be resumed after an interruption.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/geo"
)

// MAIN is the bucket holding every checkpoint.
var MAIN = []byte("main")

// Data is the serialized snapshot: the step reached and the zonotope at
// that step, generators stored row-major.
type Data struct {
	Step       int         `json:"step"`
	Time       float64     `json:"time"`
	Center     []float64   `json:"center"`
	Generators [][]float64 `json:"generators"`
	Final      bool        `json:"final"`
}

// IO reads and writes checkpoints for one run key. It satisfies the
// propagation layer's Checkpointer interface.
type IO struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

// NewIO creates a checkpoint IO that considers a snapshot stale after the
// given number of seconds.
func NewIO(db *bolt.DB, key []byte, seconds float64) *IO {
	return &IO{db: db, key: key, seconds: seconds}
}

// Open opens (or creates) the bolt database at path.
func Open(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
}

// Old reports whether the last save is older than the save interval.
func (s *IO) Old() bool {
	return time.Since(s.last).Seconds() > s.seconds
}

// SetNow resets the staleness clock.
func (s *IO) SetNow() {
	s.last = time.Now()
}

// Save writes the snapshot for the given step.
func (s *IO) Save(step int, t float64, z *geo.Zonotope) error {
	// Even if saving fails, do not retry on every step.
	s.SetNow()

	data := &Data{
		Step:       step,
		Time:       t,
		Center:     z.Center,
		Generators: rows(z.Generators),
	}
	payload, err := json.Marshal(data)
	if err != nil {
		logrus.WithError(err).Error("checkpoint: serialize failed")
		return err
	}
	if err := SaveData(s.db, s.key, payload); err != nil {
		logrus.WithError(err).Error("checkpoint: save failed")
		return err
	}
	return nil
}

// Finalize marks the stored snapshot as the end of a completed run.
func (s *IO) Finalize(step int, t float64, z *geo.Zonotope) error {
	data := &Data{
		Step:       step,
		Time:       t,
		Center:     z.Center,
		Generators: rows(z.Generators),
		Final:      true,
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return SaveData(s.db, s.key, payload)
}

// Load returns the stored snapshot and the zonotope it encodes, or nil
// when no checkpoint exists for the key.
func (s *IO) Load() (*Data, *geo.Zonotope, error) {
	payload, err := LoadData(s.db, s.key)
	if err != nil || payload == nil {
		return nil, nil, err
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, nil, err
	}
	if len(data.Center) == 0 {
		return nil, nil, nil
	}

	n := len(data.Center)
	m := 0
	if len(data.Generators) > 0 {
		m = len(data.Generators[0])
	}
	g := mat.NewDense(n, max(m, 1), nil)
	for i, row := range data.Generators {
		for j, v := range row {
			g.Set(i, j, v)
		}
	}

	logrus.WithFields(logrus.Fields{
		"step":  data.Step,
		"time":  data.Time,
		"final": data.Final,
	}).Info("checkpoint: found snapshot")
	return &data, geo.NewZonotope(data.Center, g), nil
}

// SaveData stores a value in the bolt database. A nil database is a
// no-op, so checkpointing can be disabled by not opening one.
func SaveData(db *bolt.DB, key, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData fetches a value from the bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	if db == nil {
		return nil, nil
	}
	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func rows(g *mat.Dense) [][]float64 {
	r, c := g.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = g.At(i, j)
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
