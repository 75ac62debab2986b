// glbtex extracts textures from binary glTF (GLB) files and puts edited
// textures back.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Faultbox/glbtex/internal/config"
	"github.com/Faultbox/glbtex/internal/logger"
	"github.com/Faultbox/glbtex/pkg/glb"
	"github.com/Faultbox/glbtex/pkg/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "list", "ls":
		err = cmdList(args)
	case "extract", "x":
		err = cmdExtract(args)
	case "replace", "r":
		err = cmdReplace(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`glbtex - GLB texture extraction and replacement

Usage:
  glbtex <command> [options]

Commands:
  info <file.glb>                        Show container information
  list <file.glb>                        List embedded images
  extract <file.glb> [-o DIR] [-n NAMING] Extract textures and write a manifest
  replace <file.glb> <dir> [-o PATH|-]   Replace textures listed in dir's manifest
  config [--save PATH] [--save-user]     Print or save the effective configuration

Naming schemes:
  index     texture_<i>.<ext>
  original  sanitized image name, falling back to index naming
  role      material role, e.g. baseColor_0.png

Global options:
  --config PATH     Config file (default ./glbtex.yaml, then the user config dir)
  --log-level LVL   debug, info, warn or error
  --log-file PATH   Also write logs to a rotated file
  --debug           Shorthand for --log-level debug

Examples:
  glbtex extract model.glb -o textures
  glbtex replace model.glb textures
  glbtex replace model.glb textures -o out.glb --skip-unchanged
  glbtex replace model.glb textures -o - > out.glb`)
}

// newFlagSet returns a flag set carrying the global flags.
func newFlagSet(name string) (*pflag.FlagSet, *config.Flags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	return fs, config.RegisterFlags(fs)
}

// setup loads the configuration and initializes logging.
func setup(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("config", flags.ConfigPath),
		zap.String("level", cfg.Logging.Level),
		zap.String("log_file", cfg.Logging.LogFile))
	return cfg, nil
}

func cmdInfo(args []string) error {
	fs, flags := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtex info <file.glb>")
	}
	if _, err := setup(flags); err != nil {
		return err
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading GLB file: %w", err)
	}
	c, err := glb.Parse(data)
	if err != nil {
		return err
	}

	doc := c.Doc
	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Size:       %s (%d bytes)\n", humanize.IBytes(uint64(len(data))), len(data))
	fmt.Printf("glTF:       %s\n", doc.Asset.Version)
	if doc.Asset.Generator != "" {
		fmt.Printf("Generator:  %s\n", doc.Asset.Generator)
	}
	fmt.Printf("JSON chunk: %d bytes\n", len(c.JSON))
	if c.HasBIN() {
		fmt.Printf("BIN chunk:  %d bytes\n", len(c.BIN))
	} else {
		fmt.Println("BIN chunk:  none")
	}
	fmt.Println()
	fmt.Printf("  %-12s %d\n", "meshes", c.Get("meshes.#").Int())
	fmt.Printf("  %-12s %d\n", "materials", len(doc.Materials))
	fmt.Printf("  %-12s %d\n", "textures", len(doc.Textures))
	fmt.Printf("  %-12s %d\n", "images", len(doc.Images))
	fmt.Printf("  %-12s %d\n", "bufferViews", len(doc.BufferViews))
	fmt.Printf("  %-12s %d\n", "buffers", len(doc.Buffers))

	if used := c.Get("extensionsUsed").Array(); len(used) > 0 {
		names := make([]string, len(used))
		for i, u := range used {
			names[i] = u.String()
		}
		fmt.Println()
		fmt.Printf("Extensions: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func cmdList(args []string) error {
	fs, flags := newFlagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtex list <file.glb>")
	}
	if _, err := setup(flags); err != nil {
		return err
	}

	c, err := glb.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(c.Doc.Images) == 0 {
		fmt.Println("No textures found in the GLB file.")
		return nil
	}

	roles := texture.NewRoleIndex(c.Doc)
	fmt.Printf("%-4s %-24s %-12s %10s %-11s %s\n", "#", "NAME", "MIME", "SIZE", "DIMENSIONS", "ROLE")
	for i, img := range c.Doc.Images {
		name := img.Name
		if name == "" {
			name = "-"
		}
		size, dims := "external", "-"
		if data, err := c.ImageData(i); err == nil {
			size = humanize.IBytes(uint64(len(data)))
			if info, err := texture.Probe(data); err == nil {
				dims = fmt.Sprintf("%dx%d", info.Width, info.Height)
			}
		} else if !errors.Is(err, glb.ErrNotEmbedded) {
			size = "invalid"
		}
		fmt.Printf("%-4d %-24s %-12s %10s %-11s %s\n", i, name, img.MimeType, size, dims, roles.Role(i))
	}
	return nil
}

func cmdExtract(args []string) error {
	fs, flags := newFlagSet("extract")
	flags.RegisterExtract()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtex extract <file.glb> [--output DIR] [--naming index|original|role]")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}

	scheme, err := texture.ParseNamingScheme(cfg.Extract.Naming)
	if err != nil {
		return err
	}

	c, err := glb.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}

	records, err := texture.Extract(c, cfg.Extract.OutputDir, scheme, texture.WithLogger(logger.Named("extract")))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No textures found in the GLB file.")
		return nil
	}

	logger.Info("extraction finished",
		zap.Int("textures", len(records)),
		zap.String("naming", string(scheme)),
		zap.String("dir", cfg.Extract.OutputDir))
	fmt.Printf("Extracted %d textures to %s\n", len(records), cfg.Extract.OutputDir)
	fmt.Printf("Manifest: %s\n", texture.ManifestPath(cfg.Extract.OutputDir))
	return nil
}

func cmdReplace(args []string) error {
	fs, flags := newFlagSet("replace")
	flags.RegisterReplace()
	output := fs.StringP("output", "o", "", "Output GLB path, - for stdout (default <input>_modified.glb)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: glbtex replace <file.glb> <texture_dir> [--output PATH] [--skip-unchanged]")
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}

	input, dir := fs.Arg(0), fs.Arg(1)
	outPath := *output
	if outPath == "" {
		outPath = defaultOutput(input, cfg.Replace.Suffix)
	}

	c, err := glb.ParseFile(input)
	if err != nil {
		return err
	}
	manifest, err := texture.ReadManifest(dir)
	if err != nil {
		return err
	}

	modified, report, err := texture.Replace(c, manifest, texture.FileLookup{Dir: dir},
		texture.WithLogger(logger.Named("replace")),
		texture.WithSkipUnchanged(cfg.Replace.SkipUnchanged))
	if err != nil {
		return err
	}

	// Progress goes to stderr when the container itself is written to stdout.
	msg := os.Stdout
	if outPath == "-" {
		msg = os.Stderr
		if _, err := modified.WriteTo(os.Stdout); err != nil {
			return fmt.Errorf("writing GLB to stdout: %w", err)
		}
	} else if err := modified.WriteFile(outPath); err != nil {
		return err
	}

	if len(report.Missing) > 0 {
		logger.Warn("texture files missing, images left unchanged", zap.Ints("images", report.Missing))
	}

	fmt.Fprintf(msg, "Replaced %d textures", len(report.Replaced))
	if n := len(report.Unchanged); n > 0 {
		fmt.Fprintf(msg, ", %d unchanged", n)
	}
	if n := len(report.Missing); n > 0 {
		fmt.Fprintf(msg, ", %d missing", n)
	}
	fmt.Fprintln(msg)
	if outPath != "-" {
		fmt.Fprintf(msg, "Saved modified GLB to %s\n", outPath)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs, flags := newFlagSet("config")
	flags.RegisterExtract()
	flags.RegisterReplace()
	save := fs.String("save", "", "Write the effective configuration to PATH")
	saveUser := fs.Bool("save-user", false, "Write the effective configuration to the user config directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := setup(flags)
	if err != nil {
		return err
	}

	if *saveUser {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Saved configuration to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if *save != "" {
		if err := cfg.SaveTo(*save); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Saved configuration to %s\n", *save)
		return nil
	}
	return cfg.Write(os.Stdout)
}

// defaultOutput places the modified file next to the input, with suffix
// appended to the stem.
func defaultOutput(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}
