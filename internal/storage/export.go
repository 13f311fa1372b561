package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pitmonticone/reach/internal/flowpipe"
)

type ExportData struct {
	Name  string      `json:"name"`
	Model string      `json:"model"`
	Delta float64     `json:"delta"`
	Steps int         `json:"steps"`
	Times []float64   `json:"times"`
	Lo    [][]float64 `json:"lo"`
	Hi    [][]float64 `json:"hi"`
}

func exportData(name, model string, delta float64, result *flowpipe.Result) ExportData {
	data := ExportData{
		Name:  name,
		Model: model,
		Delta: delta,
		Steps: len(result.Times) - 1,
		Times: result.Times,
		Lo:    make([][]float64, len(result.Bounds)),
		Hi:    make([][]float64, len(result.Bounds)),
	}
	for i, b := range result.Bounds {
		data.Lo[i] = b.Lo()
		data.Hi[i] = b.Hi()
	}
	return data
}

func ExportJSON(path, name, model string, delta float64, result *flowpipe.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, name, model, delta, result)
}

func ExportJSONStdout(name, model string, delta float64, result *flowpipe.Result) error {
	return writeExport(os.Stdout, name, model, delta, result)
}

func writeExport(w io.Writer, name, model string, delta float64, result *flowpipe.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(name, model, delta, result))
}
