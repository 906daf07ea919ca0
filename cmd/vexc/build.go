package main

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/cmd/vexc/internal/ui"
	"github.com/recera/vexc/internal/cache"
	"github.com/recera/vexc/internal/orderedset"
	"github.com/recera/vexc/pkg/compiler"
)

// outputSuffix replaces the template extension on generated files
const outputSuffix = ".render.js"

// builder compiles template files to render function files, going through
// the compile cache when one is open.
type builder struct {
	cfg   *config.Config
	opts  compiler.Options
	cache *cache.Cache
	root  string
	diff  bool
}

// fileResult is the outcome of compiling one template
type fileResult struct {
	Source    string
	Output    string
	Code      string
	Helpers   []string
	Cached    bool
	Unchanged bool
	Diff      []ui.DiffLine
}

func newBuilder(cfg *config.Config, useCache bool) (*builder, error) {
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return nil, err
	}
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	b := &builder{cfg: cfg, opts: opts, root: root}
	if useCache && cfg.CacheEnabled() {
		cacheCfg, err := cfg.CacheConfig()
		if err != nil {
			return nil, err
		}
		b.cache, err = cache.New(cacheCfg)
		if err != nil {
			// compiling still works without a cache
			log.Printf("⚠️  Compile cache unavailable: %v", err)
			b.cache = nil
		}
	}
	return b, nil
}

// Close flushes the cache index
func (b *builder) Close() error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Close()
}

// collect expands files and directories into template paths. Hidden
// directories, node_modules and the output directory are skipped.
func (b *builder) collect(paths []string) ([]string, error) {
	files := orderedset.New[string]()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files.Add(filepath.Clean(p))
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && b.skipDir(path, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if b.isTemplate(path) {
				files.Add(filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find templates in %s: %w", p, err)
		}
	}
	return files.Items(), nil
}

func (b *builder) skipDir(path, name string) bool {
	if strings.HasPrefix(name, ".") || name == "node_modules" {
		return true
	}
	return b.cfg.OutDir != "" && filepath.Clean(path) == filepath.Clean(b.cfg.OutDir)
}

func (b *builder) isTemplate(path string) bool {
	return strings.EqualFold(filepath.Ext(path), b.cfg.Extension) && !strings.HasSuffix(path, outputSuffix)
}

// outputPath maps a template to its render function file
func (b *builder) outputPath(src string) string {
	base := strings.TrimSuffix(src, filepath.Ext(src)) + outputSuffix
	if b.cfg.OutDir == "" {
		return base
	}
	if filepath.IsAbs(base) {
		if rel, err := filepath.Rel(b.root, base); err == nil && !strings.HasPrefix(rel, "..") {
			base = rel
		} else {
			base = filepath.Base(base)
		}
	}
	return filepath.Join(b.cfg.OutDir, base)
}

// compile produces the render function for path without writing anything
func (b *builder) compile(path string) (*fileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	result := &fileResult{Source: path, Output: b.outputPath(path)}
	key := cache.Key(compiler.Version, b.cfg.Fingerprint(), string(src))

	if b.cache != nil {
		if data, ok := b.cache.Get(key); ok {
			entry, _ := b.cache.Lookup(key)
			result.Code = string(data)
			result.Helpers = entry.Helpers
			result.Cached = true
			return result, nil
		}
	}

	out, err := compiler.Compile(path, string(src), b.opts)
	if err != nil {
		return nil, err
	}
	result.Code = out.Code
	result.Helpers = out.Helpers

	if b.cache != nil {
		if err := b.cache.Put(key, []byte(out.Code), path, out.Helpers); err != nil {
			log.Printf("⚠️  Failed to cache %s: %v", path, err)
		}
	}
	return result, nil
}

// build compiles path and writes the output file unless it is already current
func (b *builder) build(path string) (*fileResult, error) {
	result, err := b.compile(path)
	if err != nil {
		return nil, err
	}

	prev, err := os.ReadFile(result.Output)
	if err == nil && string(prev) == result.Code {
		result.Unchanged = true
		return result, nil
	}
	if err == nil && b.diff {
		result.Diff = lineDiff(string(prev), result.Code)
	}

	if err := os.MkdirAll(filepath.Dir(result.Output), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(result.Output, []byte(result.Code), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return result, nil
}

// remove deletes the output of a template that no longer exists
func (b *builder) remove(path string) error {
	if b.cache != nil {
		b.cache.InvalidateSource(path)
	}
	err := os.Remove(b.outputPath(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// lineDiff diffs two outputs line by line
func lineDiff(before, after string) []ui.DiffLine {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []ui.DiffLine
	for _, d := range diffs {
		op := 0
		switch d.Type {
		case diffpatch.DiffDelete:
			op = -1
		case diffpatch.DiffInsert:
			op = 1
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, ui.DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}
