// Package harness generates bindings and placeholder implementations for a
// directory of fixture modules.
package harness

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/config"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
	"github.com/wippyai/witx-bindgen/witx"
)

// Run processes every fixture selected by cfg and returns the paths of the
// written files, sorted. For a fixture at <dir>/a/calc.wasm, bindings of
// the default interface and of exports go to <out>/a/calc/<pkg>/bindings.go,
// those of imports to <out>/a/calc/imports/<pkg>/bindings.go, and the
// stubs to <out>/a/calc/extra.go.
//
// Fixtures are processed concurrently, each with its own extraction state.
// The first failure cancels the remaining fixtures and is returned.
func Run(ctx context.Context, cfg *config.Config) ([]string, error) {
	fixtures, err := Discover(cfg.Fixtures)
	if err != nil {
		return nil, err
	}
	Logger().Info("discovered fixtures",
		zap.String("dir", cfg.Fixtures.Dir),
		zap.Int("count", len(fixtures)))

	written := make([][]string, len(fixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Fixtures.Jobs)
	for i, rel := range fixtures {
		g.Go(func() error {
			files, err := Generate(gctx, cfg, rel)
			if err != nil {
				return err
			}
			written[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, files := range written {
		out = append(out, files...)
	}
	sort.Strings(out)
	return out, nil
}

// Discover returns the fixture paths under fx.Dir, relative to it and
// slash-separated, that match an include pattern and no exclude pattern.
func Discover(fx config.Fixtures) ([]string, error) {
	include, err := compile(fx.Patterns)
	if err != nil {
		return nil, err
	}
	exclude, err := compile(fx.Exclude)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.WalkDir(fx.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(fx.Dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.PhaseHarness, errors.KindNotFound).
			Path(fx.Dir).
			Cause(err).
			Detail("walking fixture directory").
			Build()
	}
	return out, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.New(errors.PhaseHarness, errors.KindInvalidInput).
				Cause(err).
				Detail("invalid pattern %q", p).
				Build()
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Generate processes one fixture, given relative to cfg.Fixtures.Dir, and
// returns the written paths.
func Generate(ctx context.Context, cfg *config.Config, rel string) ([]string, error) {
	defer guard(rel)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := Logger().With(zap.String("fixture", rel))

	data, err := os.ReadFile(filepath.Join(cfg.Fixtures.Dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fail(rel, errors.KindNotFound, err, "reading fixture")
	}
	mi, err := extract.Extract(data,
		extract.WithSectionPrefix(cfg.SectionPrefix),
		extract.WithLogger(log))
	if err != nil {
		return nil, fail(rel, errors.KindInvalidData, err, "extracting interfaces")
	}

	stem := strings.TrimSuffix(rel, path.Ext(rel))
	root := filepath.Join(cfg.Generate.OutDir, filepath.FromSlash(stem))
	gen := &bindgen.Generator{
		ImportPrefix: path.Join(cfg.Generate.ImportPrefix, stem),
		Format:       cfg.Generate.Format,
	}

	var written []string
	var provided []*witx.Interface
	owners := make(map[string]string)
	for _, e := range mi.Interfaces.All() {
		f, err := gen.Bindings(e.Interface)
		if err != nil {
			return nil, fail(rel, errors.KindUnsupported, err, "generating bindings for "+e.Name)
		}
		dir := filepath.Join(root, f.Package)
		if e.Role == witx.RoleImport {
			dir = filepath.Join(root, "imports", f.Package)
		} else {
			provided = append(provided, e.Interface)
		}
		if prev, ok := owners[dir]; ok {
			clash := errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
				Path(f.Package).
				Value(dir).
				Detail("interfaces %q and %q both map to package directory %s", prev, e.Name, dir).
				Build()
			return nil, fail(rel, errors.KindInvalidInput, clash, "generating bindings for "+e.Name)
		}
		owners[dir] = e.Name
		p, err := write(dir, f)
		if err != nil {
			return nil, fail(rel, errors.KindInvalidInput, err, "writing bindings")
		}
		written = append(written, p)
	}

	if len(provided) > 0 {
		f, err := gen.Stubs(cfg.Generate.Package, provided...)
		if err != nil {
			return nil, fail(rel, errors.KindUnsupported, err, "generating stubs")
		}
		p, err := write(root, f)
		if err != nil {
			return nil, fail(rel, errors.KindInvalidInput, err, "writing stubs")
		}
		written = append(written, p)
	}

	log.Info("generated fixture",
		zap.Int("interfaces", mi.Interfaces.Len()),
		zap.Int("files", len(written)))
	return written, nil
}

func write(dir string, f *bindgen.File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, f.Name)
	if err := os.WriteFile(p, f.Source, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func fail(fixture string, kind errors.Kind, cause error, detail string) error {
	return errors.New(errors.PhaseHarness, kind).
		Path(fixture).
		Cause(cause).
		Detail("%s", detail).
		Build()
}
