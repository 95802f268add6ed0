package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gradienthealth/dicom"

	"github.com/radbridge/radbridge/internal/dataset"
	"github.com/radbridge/radbridge/internal/fsutil"
	"github.com/radbridge/radbridge/internal/hl7"
	"github.com/radbridge/radbridge/internal/mapper"
	"github.com/radbridge/radbridge/internal/template"
)

// templateExtension is the suffix template files carry in the template
// directory.
const templateExtension = ".tpl"

// runRender loads a DICOM object and a template and writes the rendered
// flat-text message.
func (a *App) runRender(ctx context.Context, appConfig *Config) error {
	tplPath, err := a.locateTemplate(appConfig.TemplatePath)
	if err != nil {
		return err
	}
	tplBytes, err := os.ReadFile(tplPath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	ds, err := loadDICOM(appConfig.DICOMPath)
	if err != nil {
		return err
	}
	a.logger.Debug("dataset loaded", "path", appConfig.DICOMPath, "elements", len(ds.Elements))

	renderer := &template.Renderer{Config: a.bridge}
	out := renderer.Render(ctx, string(tplBytes), ds)
	return a.writeOutput(appConfig.OutPath, out)
}

// runMap parses a flat-text message and writes a listing of the mapped
// dataset.
func (a *App) runMap(ctx context.Context, appConfig *Config) error {
	raw, err := os.ReadFile(appConfig.HL7Path)
	if err != nil {
		return fmt.Errorf("reading message: %w", err)
	}
	msg, err := hl7.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parsing message: %w", err)
	}

	ds, err := mapper.ToDataset(ctx, msg)
	if err != nil {
		return fmt.Errorf("mapping message: %w", err)
	}
	a.logger.Debug("message mapped", "dedup_id", mapper.DedupID(msg), "elements", len(ds.Elements))

	return a.writeOutput(appConfig.OutPath, ds.Dump())
}

// locateTemplate resolves the template flag: an existing file path wins, a
// bare name is searched for in the configured template directory.
func (a *App) locateTemplate(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if strings.ContainsRune(path, os.PathSeparator) {
		return "", fmt.Errorf("template %q not found", path)
	}
	found, err := fsutil.FindNamedTemplate(a.bridge.TemplateDir, path, templateExtension)
	if err != nil {
		return "", fmt.Errorf("searching template directory %q: %w", a.bridge.TemplateDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("template %q not found in %q", path, a.bridge.TemplateDir)
	}
	a.logger.Debug("template located by name", "name", path, "file", found)
	return found, nil
}

// loadDICOM parses a DICOM file through the binary-protocol stack and
// converts it into the engine's dataset model. Pixel data is dropped; the
// engine only ever touches metadata.
func loadDICOM(path string) (*dataset.Dataset, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	defer in.Close()

	p, err := dicom.NewParser(in, st.Size(), nil)
	if err != nil {
		return nil, fmt.Errorf("opening object: %w", err)
	}
	parsed, err := p.Parse(dicom.ParseOptions{DropPixelData: true})
	if err != nil {
		return nil, fmt.Errorf("parsing object: %w", err)
	}
	return dataset.FromDICOM(parsed), nil
}

func (a *App) writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(a.outW, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
