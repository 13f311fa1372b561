package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pitmonticone/reach/internal/flowpipe"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Delta     float64   `json:"delta"`
	Steps     int       `json:"steps"`
	Order     int       `json:"order"`
	Dim       int       `json:"dim"`
}

func (s *Store) Save(name, model string, delta float64, order int, result *flowpipe.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	dim := 0
	if len(result.Bounds) > 0 {
		dim = result.Bounds[0].Dim()
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Model:     model,
		Timestamp: time.Now(),
		Delta:     delta,
		Steps:     len(result.Times) - 1,
		Order:     order,
		Dim:       dim,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "bounds.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Bounds) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("lo%d", i), fmt.Sprintf("hi%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, b := range result.Bounds {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		lo, hi := b.Lo(), b.Hi()
		for j := 0; j < dim; j++ {
			row = append(row,
				strconv.FormatFloat(lo[j], 'g', 12, 64),
				strconv.FormatFloat(hi[j], 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadBounds reads the per-step box bounds of a run: times[i] is the
// step time, lo[i]/hi[i] the per-coordinate bounds at that step.
func (s *Store) LoadBounds(runID string) (times []float64, lo, hi [][]float64, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "bounds.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, [][]float64{}, [][]float64{}, nil
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 || len(record)%2 == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		dim := (len(record) - 1) / 2
		l := make([]float64, 0, dim)
		h := make([]float64, 0, dim)
		ok := true
		for j := 0; j < dim; j++ {
			lv, err1 := strconv.ParseFloat(record[1+2*j], 64)
			hv, err2 := strconv.ParseFloat(record[2+2*j], 64)
			if err1 != nil || err2 != nil {
				ok = false
				break
			}
			l = append(l, lv)
			h = append(h, hv)
		}
		if !ok {
			continue
		}

		times = append(times, t)
		lo = append(lo, l)
		hi = append(hi, h)
	}

	return times, lo, hi, nil
}
