package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	ifs "github.com/hupe1980/colsel/internal/fs"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/scalar"
	"github.com/spf13/cobra"
)

// fileInfo is the JSON form of an imprint file header.
type fileInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Version  int    `json:"version"`
	Bits     int    `json:"bits"`
	Synced   bool   `json:"synced"`
	Rows     int    `json:"rows"`
	Masks    int    `json:"masks"`
	Dict     int    `json:"dict"`
	Size     int64  `json:"size"`
	WantSize int64  `json:"want_size"`
}

func newInfoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "Print imprint file headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var infos []fileInfo
			for _, path := range args {
				h, size, err := readHeader(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fi := fileInfo{
					Path:     path,
					Kind:     h.Kind.String(),
					Version:  h.Version,
					Bits:     h.Bits,
					Synced:   h.Synced,
					Rows:     h.Rows,
					Masks:    h.Masks,
					Dict:     h.Dict,
					Size:     size,
					WantSize: h.FileSize(),
				}
				if asJSON {
					infos = append(infos, fi)
					continue
				}
				fmt.Fprintf(out, "%s\n", fi.Path)
				fmt.Fprintf(out, "  kind:    %s\n", fi.Kind)
				fmt.Fprintf(out, "  version: %d\n", fi.Version)
				fmt.Fprintf(out, "  bins:    %d\n", fi.Bits)
				fmt.Fprintf(out, "  synced:  %t\n", fi.Synced)
				fmt.Fprintf(out, "  rows:    %d\n", fi.Rows)
				fmt.Fprintf(out, "  masks:   %d\n", fi.Masks)
				fmt.Fprintf(out, "  dict:    %d\n", fi.Dict)
				fmt.Fprintf(out, "  size:    %d (want %d)\n", fi.Size, fi.WantSize)
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Render the bin masks of every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d pages\n", args[0], x.Rows(), x.Pages())
			return x.Format(out)
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PATH...",
		Short: "Fully decode imprint files",
		Long: `Verify decodes every named file, and every imprint file in a named
directory, and reports the ones that are unsynced, truncated, stale in
layout or otherwise unusable.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			files, err := expand(args)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range files {
				if err := verify(path); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", failed, len(files))
			}
			return nil
		},
	}
}

// expand replaces directories by the imprint files they hold.
func expand(paths []string) ([]string, error) {
	var fsys ifs.LocalFS
	var out []string
	for _, p := range paths {
		st, err := fsys.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := imprints.List(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func readHeader(path string) (imprints.Header, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return imprints.Header{}, 0, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return imprints.Header{}, 0, err
	}
	buf := make([]byte, imprints.HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return imprints.Header{}, st.Size(), fmt.Errorf("%w: truncated header", imprints.ErrCorrupt)
		}
		return imprints.Header{}, st.Size(), err
	}
	h, err := imprints.ReadHeader(buf)
	return h, st.Size(), err
}

// index is the kind-independent view of a loaded imprint index.
type index interface {
	Format(w io.Writer) error
	Rows() int
	Bits() int
	Pages() int
}

// load decodes the file at path as the value type named in its header.
func load(path string) (index, error) {
	h, _, err := readHeader(path)
	if err != nil {
		return nil, err
	}
	switch h.Kind {
	case scalar.KindInt8:
		return loadAs[int8](path)
	case scalar.KindInt16:
		return loadAs[int16](path)
	case scalar.KindInt32:
		return loadAs[int32](path)
	case scalar.KindInt64:
		return loadAs[int64](path)
	case scalar.KindFloat32:
		return loadAs[float32](path)
	case scalar.KindFloat64:
		return loadAs[float64](path)
	}
	return nil, fmt.Errorf("%w: kind %s", imprints.ErrCorrupt, h.Kind)
}

func loadAs[T scalar.Scalar](path string) (index, error) {
	x, err := imprints.Load[T](path)
	if err != nil {
		return nil, err
	}
	return x, nil
}

func verify(path string) error {
	_, err := load(path)
	return err
}
