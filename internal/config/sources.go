package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_sources.yaml
var sampleSources string

// Source types.
const (
	SourceAnalysis  = "analysis"
	SourceDatapoint = "datapoint"
)

// Source formats.
const (
	FormatYouTube = "youtube"
	FormatWebpage = "webpage"
)

var youtubeChannelPattern = regexp.MustCompile(`^https://www\.youtube\.com/@[^/]+/videos$`)

// Source is one outlet the pipeline reads from.
type Source struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Type   string `yaml:"type"`
	Format string `yaml:"format"`
	Rank   int    `yaml:"rank"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads and validates the YAML sources file. Every problem found
// is reported together so the operator can fix the file in one pass.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	for i := range file.Sources {
		src := &file.Sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)
		src.Type = strings.ToLower(strings.TrimSpace(src.Type))
		src.Format = strings.ToLower(strings.TrimSpace(src.Format))
	}
	if err := ValidateSources(file.Sources); err != nil {
		return nil, fmt.Errorf("sources file %s: %w", path, err)
	}
	return file.Sources, nil
}

// ValidateSources checks required fields and enumerations on every source.
func ValidateSources(sources []Source) error {
	if len(sources) == 0 {
		return errors.New("sources: at least one source is required")
	}
	var problems []error
	names := map[string]int{}
	for i, src := range sources {
		at := fmt.Sprintf("sources[%d]", i)
		if src.Name == "" {
			problems = append(problems, fmt.Errorf("%s.name cannot be empty", at))
		} else if prev, dup := names[src.Name]; dup {
			problems = append(problems, fmt.Errorf("%s.name %q duplicates sources[%d]", at, src.Name, prev))
		} else {
			names[src.Name] = i
		}
		switch src.Type {
		case SourceAnalysis, SourceDatapoint:
		default:
			problems = append(problems, fmt.Errorf("%s.type %q must be analysis or datapoint", at, src.Type))
		}
		switch src.Format {
		case FormatWebpage:
			if !strings.HasPrefix(src.URL, "http://") && !strings.HasPrefix(src.URL, "https://") {
				problems = append(problems, fmt.Errorf("%s.url %q must start with http:// or https://", at, src.URL))
			}
		case FormatYouTube:
			if !youtubeChannelPattern.MatchString(src.URL) {
				problems = append(problems, fmt.Errorf("%s.url %q must look like https://www.youtube.com/@<handle>/videos", at, src.URL))
			}
		default:
			problems = append(problems, fmt.Errorf("%s.format %q must be youtube or webpage", at, src.Format))
		}
		if src.Rank <= 0 {
			problems = append(problems, fmt.Errorf("%s.rank must be a positive integer", at))
		}
	}
	return errors.Join(problems...)
}

// FilterSources returns the sources of the given type, preserving file order.
func FilterSources(sources []Source, sourceType string) []Source {
	var out []Source
	for _, src := range sources {
		if src.Type == sourceType {
			out = append(out, src)
		}
	}
	return out
}

// CreateSampleSources writes a sample sources file to the specified location.
func CreateSampleSources(path string) error {
	return writeSample(path, sampleSources, "sources")
}
