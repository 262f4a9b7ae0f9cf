// mdltool is a CLI utility for inspecting and exporting MDL model files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/mdlkit/internal/config"
	"github.com/Faultbox/mdlkit/internal/logger"
	"github.com/Faultbox/mdlkit/pkg/encoding"
	"github.com/Faultbox/mdlkit/pkg/export"
	"github.com/Faultbox/mdlkit/pkg/mdl"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "elements", "ls":
		err = cmdElements(os.Stdout, args)
	case "export", "x":
		err = cmdExport(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `mdltool - MDL model utility

Usage:
  mdltool [flags] <command> [args]

Commands:
  info <file.mdl>              Show header and totals
  elements <file.mdl>          List element records
  export <file.mdl> [output]   Export model as JSON or YAML (stdout if no output)
  config [path]                Write the effective config (default: user config dir)

Flags:
  -config <path>    Config file (default ./mdltool.yaml, then user config dir)
  -debug            Debug logging, including pointer resolution
  -log-file <path>  Also log to a rotated file
  -format json|yaml Export format
  -charset <name>   Material name charset (utf-8, euc-kr, shift-jis, latin1, windows-1252)
  -compact          Disable JSON indentation

Examples:
  mdltool info hero.mdl
  mdltool -debug elements hero.mdl
  mdltool -format yaml -charset shift-jis export hero.mdl hero.yaml`)
}

// loadModel decodes path with decoder tracing routed to the global logger.
func loadModel(path string) (*mdl.Model, error) {
	log := logger.Log.With(zap.String("file", path))
	m, err := mdl.ParseMDLFile(path, mdl.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("model decoded",
		zap.Uint32("elements", m.ElementsCount),
		zap.Int("faces", m.TotalFaces()),
		zap.Int("vertices", m.TotalVertices()))
	return m, nil
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mdltool info <file.mdl>")
	}

	m, err := loadModel(args[0])
	if err != nil {
		return err
	}

	meshes, withIndices, withVertices := 0, 0, 0
	for i := range m.Elements {
		e := &m.Elements[i]
		if e.HasMesh() {
			meshes++
		}
		if e.Indices != nil {
			withIndices++
		}
		if e.Vertices != nil {
			withVertices++
		}
	}

	fmt.Fprintf(w, "Model:     %s\n", args[0])
	fmt.Fprintf(w, "Skeleton:  0x%08x (%d joints)\n", m.SkeletonKey, m.JointCount)
	fmt.Fprintf(w, "Elements:  %d (%d with mesh)\n", len(m.Elements), meshes)
	fmt.Fprintf(w, "Materials: %d declared, %d resolved\n", m.MaterialCount, len(m.MaterialNames()))
	fmt.Fprintf(w, "Faces:     %d\n", m.TotalFaces())
	fmt.Fprintf(w, "Vertices:  %d\n", m.TotalVertices())
	fmt.Fprintf(w, "Buffers:   %d index, %d vertex\n", withIndices, withVertices)
	fmt.Fprintf(w, "Bounds:    %v\n", m.Bounds)

	if names := m.MaterialNames(); len(names) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Materials:")
		for _, name := range names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}

func cmdElements(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("elements", flag.ContinueOnError)
	meshOnly := fs.Bool("mesh", false, "Only list elements with geometry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: mdltool elements [-mesh] <file.mdl>")
	}

	m, err := loadModel(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-4s %8s %8s %6s %6s %6s  %s\n", "#", "faces", "verts", "stride", "idx", "vtx", "material")
	for i := range m.Elements {
		e := &m.Elements[i]
		if *meshOnly && !e.HasMesh() {
			continue
		}
		material := "-"
		if e.MaterialName != nil {
			material = *e.MaterialName
		}
		fmt.Fprintf(w, "%-4d %8d %8d %6d %6s %6s  %s\n",
			i, e.NumFaces, e.NumVct, e.VertexStride,
			presence(e.Indices), presence(e.Vertices), material)
	}
	return nil
}

func presence(buf []byte) string {
	if buf == nil {
		return "-"
	}
	return fmt.Sprintf("%d", len(buf))
}

func cmdExport(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mdltool export <file.mdl> [output]")
	}

	charset, err := encoding.Lookup(cfg.Export.NameCharset)
	if err != nil {
		return err
	}

	m, err := loadModel(args[0])
	if err != nil {
		return err
	}

	out := export.FromModel(m, export.Options{
		NameCharset:      charset,
		IncludePositions: cfg.Export.IncludePositions,
		IncludeIndices:   cfg.Export.IncludeIndices,
	})

	if len(args) < 2 {
		return export.Write(os.Stdout, out, cfg.Export.Format, cfg.Export.Indent)
	}

	outputPath := args[1]
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := export.Write(f, out, cfg.Export.Format, cfg.Export.Indent); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("exported", zap.String("output", outputPath), zap.String("format", cfg.Export.Format))
	fmt.Fprintf(os.Stderr, "Exported: %s (%d elements)\n", outputPath, len(out.Elements))
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote: %s\n", path)
	return nil
}
