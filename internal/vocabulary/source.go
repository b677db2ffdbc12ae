// Package vocabulary builds the filtered word universe from a frequency
// corpus and samples target words from it.
package vocabulary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Source is a word-frequency corpus.
type Source interface {
	// TopNWords returns up to n words, most frequent first.
	TopNWords(n int) []string
	// FrequencyScore returns the zipf frequency of word, 0 when unknown.
	FrequencyScore(word string) float64
}

// FrequencyList is an in-memory Source.
type FrequencyList struct {
	ranked []string
	zipf   map[string]float64
}

// NewFrequencyList builds a Source from zipf scores. Ties keep input order.
func NewFrequencyList(words []string, zipf []float64) *FrequencyList {
	fl := &FrequencyList{zipf: make(map[string]float64, len(words))}
	for i, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := fl.zipf[w]; dup {
			continue
		}
		fl.zipf[w] = zipf[i]
		fl.ranked = append(fl.ranked, w)
	}
	sort.SliceStable(fl.ranked, func(i, j int) bool {
		return fl.zipf[fl.ranked[i]] > fl.zipf[fl.ranked[j]]
	})
	return fl
}

func (fl *FrequencyList) TopNWords(n int) []string {
	if n <= 0 || n > len(fl.ranked) {
		n = len(fl.ranked)
	}
	return append([]string(nil), fl.ranked[:n]...)
}

func (fl *FrequencyList) FrequencyScore(word string) float64 {
	return fl.zipf[strings.ToLower(word)]
}

// ZipfFromCount converts a raw corpus count into a zipf value: the base-10
// logarithm of occurrences per billion words.
func ZipfFromCount(count, total float64) float64 {
	if count <= 0 || total <= 0 {
		return 0
	}
	return math.Log10(count / total * 1e9)
}

// LoadCSV reads a frequency list from a CSV file.
func LoadCSV(path string) (*FrequencyList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency file: %w", err)
	}
	defer f.Close()

	fl, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse frequency file: %w", err)
	}
	return fl, nil
}

// ParseCSV reads rows of "word,value". The value column holds either zipf
// scores or raw counts. A header naming the column ("zipf", "count", "freq",
// "frequency") decides; without a header, all-integer values are counts.
func ParseCSV(r io.Reader) (*FrequencyList, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		words   []string
		values  []float64
		kind    string
		integer = true
		first   = true
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		raw := strings.TrimSpace(record[1])
		v, perr := strconv.ParseFloat(raw, 64)
		if first {
			first = false
			if perr != nil {
				switch strings.ToLower(raw) {
				case "zipf":
					kind = "zipf"
				case "count", "freq", "frequency":
					kind = "count"
				default:
					return nil, fmt.Errorf("unknown value column %q", record[1])
				}
				continue
			}
		}
		if perr != nil {
			return nil, fmt.Errorf("value for %q: %w", record[0], perr)
		}
		if v != math.Trunc(v) {
			integer = false
		}
		words = append(words, record[0])
		values = append(values, v)
	}

	if kind == "" {
		kind = "zipf"
		if integer && len(values) > 0 {
			kind = "count"
		}
	}
	if kind == "count" {
		var total float64
		for _, v := range values {
			total += v
		}
		for i, v := range values {
			values[i] = ZipfFromCount(v, total)
		}
	}

	return NewFrequencyList(words, values), nil
}
