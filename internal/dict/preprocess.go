package dict

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Record is one aggregated row of the processed dictionary cache: all
// inflected raw forms that normalize to the same surface, collapsed, with
// the highest-frequency metadata retained.
type Record struct {
	Surface         string
	Length          int
	Lemma           string
	Definition      string
	Frequency       float64
	IsCompound      bool
	IsStopword      bool
	DifficultyScore float64
	RawForms        []string
}

var processedHeader = []string{
	"surface", "length", "lemma", "definition", "frequency",
	"is_compound", "is_stopword", "difficulty_score", "raw_forms",
}

// Preprocess reads the raw lexicon TSV, folds diacritics, collapses
// inflections onto unique surfaces and, when destination is non-empty,
// persists the processed cache there.
func Preprocess(source, destination string) ([]Record, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open raw dictionary: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read raw dictionary header: %w", err)
	}
	cols := columnMap(header)
	surfaceCol, ok := cols.first("entry_word", "surface")
	if !ok {
		return nil, fmt.Errorf("raw dictionary missing entry_word column")
	}
	freqCol, _ := cols.first("lexeme_frequency", "frequency")
	scoreCol, hasScore := cols.first("difficulty_score")
	adultCol, hasAdult := cols.first("is_adult")
	lemmaCol, _ := cols.first("lemma")
	defCol, _ := cols.first("definition")
	compoundCol, _ := cols.first("is_compound")
	stopCol, _ := cols.first("is_stopword")

	aggregated := make(map[string]*Record)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read raw dictionary row: %w", err)
		}
		if hasAdult && parseBool(field(row, adultCol)) {
			continue
		}
		surface := Normalize(field(row, surfaceCol))
		if !isSurface(surface) {
			continue
		}
		freq := parseFloat(field(row, freqCol))
		rec, exists := aggregated[surface]
		if !exists {
			rec = &Record{Surface: surface, Length: len(surface)}
			aggregated[surface] = rec
		}
		if raw := strings.TrimSpace(field(row, surfaceCol)); raw != "" {
			rec.RawForms = appendUnique(rec.RawForms, raw)
		}
		rec.IsCompound = rec.IsCompound || parseBool(field(row, compoundCol))
		rec.IsStopword = rec.IsStopword || parseBool(field(row, stopCol))
		if freq >= rec.Frequency || !exists {
			rec.Frequency = freq
			rec.Lemma = strings.TrimSpace(field(row, lemmaCol))
			rec.Definition = strings.TrimSpace(field(row, defCol))
			if hasScore {
				rec.DifficultyScore = parseFloat(field(row, scoreCol))
			} else {
				rec.DifficultyScore = 1 - freq
			}
		}
	}

	records := make([]Record, 0, len(aggregated))
	for _, rec := range aggregated {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Surface < records[j].Surface })

	if destination != "" {
		if err := WriteProcessed(records, destination); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// WriteProcessed persists records as the processed TSV cache.
func WriteProcessed(records []Record, destination string) error {
	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create processed dictionary: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'
	if err := cw.Write(processedHeader); err != nil {
		return err
	}
	for _, rec := range records {
		forms := append([]string(nil), rec.RawForms...)
		sort.Strings(forms)
		row := []string{
			rec.Surface,
			strconv.Itoa(rec.Length),
			rec.Lemma,
			rec.Definition,
			strconv.FormatFloat(rec.Frequency, 'f', 6, 64),
			boolField(rec.IsCompound),
			boolField(rec.IsStopword),
			strconv.FormatFloat(rec.DifficultyScore, 'f', 6, 64),
			strings.Join(forms, "|"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadProcessed reads a cache written by WriteProcessed.
func LoadProcessed(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open processed dictionary: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read processed header: %w", err)
	}
	cols := columnMap(header)
	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			i, _ := cols.first(name)
			return field(row, i)
		}
		rec := Record{
			Surface:         strings.ToUpper(strings.TrimSpace(get("surface"))),
			Lemma:           get("lemma"),
			Definition:      get("definition"),
			Frequency:       parseFloat(get("frequency")),
			IsCompound:      parseBool(get("is_compound")),
			IsStopword:      parseBool(get("is_stopword")),
			DifficultyScore: parseFloat(get("difficulty_score")),
		}
		rec.Length, _ = strconv.Atoi(get("length"))
		if rec.Length == 0 {
			rec.Length = len(rec.Surface)
		}
		for _, form := range strings.Split(get("raw_forms"), "|") {
			if form != "" {
				rec.RawForms = append(rec.RawForms, form)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// EnsureProcessed returns destination, generating the cache from source
// first if it does not exist yet.
func EnsureProcessed(source, destination string) (string, error) {
	if _, err := os.Stat(destination); err == nil {
		return destination, nil
	}
	if _, err := Preprocess(source, destination); err != nil {
		return "", err
	}
	return destination, nil
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func appendUnique(forms []string, form string) []string {
	for _, f := range forms {
		if f == form {
			return forms
		}
	}
	return append(forms, form)
}
