package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/screening"
)

// Manifest describes a screening batch in a YAML or JSON file. Relative paths
// are resolved against the manifest directory.
type Manifest struct {
	Job        string          `mapstructure:"job"`
	MustHave   []string        `mapstructure:"must-have"`
	Candidates []ManifestEntry `mapstructure:"candidates"`
}

type ManifestEntry struct {
	Name     string `mapstructure:"name"`
	File     string `mapstructure:"file"`
	MimeType string `mapstructure:"mime"`
}

func loadManifest(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := mapstructure.Decode(v.AllSettings(), &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if m.Job != "" && !filepath.IsAbs(m.Job) {
		m.Job = filepath.Join(dir, m.Job)
	}
	for i, c := range m.Candidates {
		if strings.TrimSpace(c.File) == "" {
			return nil, fmt.Errorf("manifest %s: candidate %d has no file", path, i+1)
		}
		if !filepath.IsAbs(c.File) {
			m.Candidates[i].File = filepath.Join(dir, c.File)
		}
	}

	return &m, nil
}

// readDocument loads a file. The name defaults to the file name without extension.
func readDocument(name, path, mimeType string) (screening.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return screening.Document{}, err
	}

	if strings.TrimSpace(name) == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if mimeType == "" {
		mimeType = extract.TypeByFilename(path)
	}

	return screening.Document{Name: name, MimeType: mimeType, Data: data}, nil
}

type screenInput struct {
	jd       string
	cvs      []string
	mustHave []string
	manifest string
}

// buildRequest merges flags with the optional manifest. Flags win for the JD.
func buildRequest(in screenInput) (screening.Request, error) {
	var req screening.Request

	jdPath := in.jd
	var entries []ManifestEntry
	mustHave := append([]string(nil), in.mustHave...)

	if in.manifest != "" {
		m, err := loadManifest(in.manifest)
		if err != nil {
			return req, err
		}
		if jdPath == "" {
			jdPath = m.Job
		}
		entries = append(entries, m.Candidates...)
		mustHave = append(mustHave, m.MustHave...)
	}
	for _, cv := range in.cvs {
		entries = append(entries, ManifestEntry{File: cv})
	}

	if jdPath == "" {
		return req, fmt.Errorf("a job description is required (--jd or job in the manifest)")
	}
	if len(entries) == 0 {
		return req, fmt.Errorf("at least one CV is required (--cv, arguments or candidates in the manifest)")
	}

	jd, err := readDocument("job description", jdPath, "")
	if err != nil {
		return req, fmt.Errorf("reading job description: %w", err)
	}
	req.JobDescription = jd
	req.MustHaveSkills = mustHave

	for _, e := range entries {
		doc, err := readDocument(e.Name, e.File, e.MimeType)
		if err != nil {
			return req, fmt.Errorf("reading CV: %w", err)
		}
		req.Candidates = append(req.Candidates, doc)
	}

	return req, nil
}
