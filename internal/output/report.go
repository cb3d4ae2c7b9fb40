package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annuitet/loan-calculator/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport writes the comparison in the requested format to a
// timestamped file in dir and returns the written paths. The pseudo format
// "all" writes the plan table, the detailed CSV and the JSON document.
func GenerateReport(results *domain.ScenarioComparison, format, dir string) ([]string, error) {
	if f := GetFormatterByName(format); f != nil {
		path, err := WriteFormatted(f, results, dir, FileExtension(f.Name()))
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	if NormalizeFormatName(format) == "all" {
		var paths []string
		for _, f := range []Formatter{PlanFormatter{}, CSVDetailedExporter{}, JSONFormatter{}} {
			path, err := WriteFormatted(f, results, dir, FileExtension(f.Name()))
			if err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}
	return nil, unsupportedFormat(format)
}

// Render formats the comparison and writes it to w.
func Render(w io.Writer, results *domain.ScenarioComparison, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return unsupportedFormat(format)
	}
	data, err := f.Format(results)
	if err != nil {
		return fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// enrich error with available formatters and aliases
func unsupportedFormat(format string) error {
	return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
