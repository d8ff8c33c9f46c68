// Package asmload is a pure producer: it turns a human-authored YAML array
// definition, or the instruction-per-line mnemonic grammar of its PE/AGU
// program fields, into the on-disk folder layout grid.LoadFromFolder reads.
// The core engine never imports this package; it consumes only the binary
// program and image files asmload writes, mirroring the teacher's own split
// between a YAML/ASM program loader (core.LoadProgramFileFromYAML,
// core.LoadProgramFileFromASM) and the cycle-accurate engine that consumes
// its output.
package asmload

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pace-sim/agu"
	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
)

// Coord is a PE's column/row position in the array.
type Coord struct {
	X, Y int
}

// FolderSpec is the fully parsed, in-memory form of a human-authored array
// definition. WriteFolder renders it into the PE-Y{y}X{x}, dm{i}, and
// agu{i} files a Grid is built from.
type FolderSpec struct {
	Width, Height int
	Programs      map[Coord]isa.Program
	LeftMemories  []*dmem.DataMemory
	RightMemories []*dmem.DataMemory
	// LeftAGUs/RightAGUs hold one raw mnemonic program per row, in the text
	// format agu.ParseMnemonic accepts. Both must be either fully populated
	// (one entry per row) or both left empty: AGU programs are an
	// all-or-nothing feature of the array, never a single edge.
	LeftAGUs  []string
	RightAGUs []string
}

type yamlRoot struct {
	Array yamlArray `yaml:"array_config"`
}

type yamlArray struct {
	Rows     int          `yaml:"rows"`
	Columns  int          `yaml:"columns"`
	PEs      []yamlPE     `yaml:"pes"`
	Memories []yamlMemory `yaml:"memories"`
	AGUs     []yamlAGU    `yaml:"agus"`
}

// yamlPE describes one PE's program as mnemonic text, one instruction per
// line (see ParseProgramMnemonic).
type yamlPE struct {
	Row     int    `yaml:"row"`
	Column  int    `yaml:"column"`
	Program string `yaml:"program"`
}

// yamlMemory describes one edge-shared DataMemory. Image is the
// dmem.FromBinaryString text format; Edge is "left" or "right".
type yamlMemory struct {
	Index int    `yaml:"index"`
	Edge  string `yaml:"edge"`
	Image string `yaml:"image"`
}

// yamlAGU describes one row's AGU program as mnemonic text (see
// agu.ParseMnemonic); Edge is "left" or "right".
type yamlAGU struct {
	Row     int    `yaml:"row"`
	Edge    string `yaml:"edge"`
	Program string `yaml:"program"`
}

// LoadYAML reads and parses a YAML array definition file.
func LoadYAML(path string) (*FolderSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asmload: reading %q: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML array definition from memory.
func ParseYAML(data []byte) (*FolderSpec, error) {
	var root yamlRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("asmload: parsing YAML: %w", err)
	}
	a := root.Array

	if a.Rows <= 0 || a.Columns <= 0 {
		return nil, fmt.Errorf("asmload: array_config.rows and .columns must be positive")
	}

	spec := &FolderSpec{
		Width:  a.Columns,
		Height: a.Rows,
		Programs: make(map[Coord]isa.Program, len(a.PEs)),
	}

	for _, pe := range a.PEs {
		prog, err := ParseProgramMnemonic(pe.Program)
		if err != nil {
			return nil, fmt.Errorf("asmload: PE(%d,%d): %w", pe.Column, pe.Row, err)
		}
		spec.Programs[Coord{X: pe.Column, Y: pe.Row}] = prog
	}

	pairs := a.Rows / 2
	left := make([]*dmem.DataMemory, pairs)
	right := make([]*dmem.DataMemory, pairs)
	for _, m := range a.Memories {
		dm, err := dmem.FromBinaryString(m.Image)
		if err != nil {
			return nil, fmt.Errorf("asmload: memory %d (%s): %w", m.Index, m.Edge, err)
		}
		switch m.Edge {
		case "left":
			if m.Index < 0 || m.Index >= pairs {
				return nil, fmt.Errorf("asmload: left memory index %d out of range [0,%d)", m.Index, pairs)
			}
			left[m.Index] = dm
		case "right":
			if m.Index < 0 || m.Index >= pairs {
				return nil, fmt.Errorf("asmload: right memory index %d out of range [0,%d)", m.Index, pairs)
			}
			right[m.Index] = dm
		default:
			return nil, fmt.Errorf("asmload: memory %d has unknown edge %q, want \"left\" or \"right\"", m.Index, m.Edge)
		}
	}
	spec.LeftMemories, spec.RightMemories = left, right

	if len(a.AGUs) > 0 {
		leftAGUs := make([]string, a.Rows)
		rightAGUs := make([]string, a.Rows)
		leftSeen, rightSeen := 0, 0
		for _, entry := range a.AGUs {
			if _, err := agu.ParseMnemonic(entry.Program); err != nil {
				return nil, fmt.Errorf("asmload: agu row %d (%s): %w", entry.Row, entry.Edge, err)
			}
			if entry.Row < 0 || entry.Row >= a.Rows {
				return nil, fmt.Errorf("asmload: agu row %d is out of range [0,%d)", entry.Row, a.Rows)
			}
			switch entry.Edge {
			case "left":
				leftAGUs[entry.Row] = entry.Program
				leftSeen++
			case "right":
				rightAGUs[entry.Row] = entry.Program
				rightSeen++
			default:
				return nil, fmt.Errorf("asmload: agu row %d has unknown edge %q, want \"left\" or \"right\"", entry.Row, entry.Edge)
			}
		}
		if leftSeen != a.Rows || rightSeen != a.Rows {
			return nil, fmt.Errorf("asmload: agu programs must be provided for every row on both edges (got %d left, %d right, want %d each)", leftSeen, rightSeen, a.Rows)
		}
		spec.LeftAGUs, spec.RightAGUs = leftAGUs, rightAGUs
	}

	return spec, nil
}

// WriteFolder renders spec into the on-disk layout grid.LoadFromFolder
// expects: one PE-Y{y}X{x} binary program file per coordinate, dm{i} images
// for the left edge then the right edge, and (if present) agu{i} mnemonic
// files for every row on both edges.
func WriteFolder(spec *FolderSpec, folderPath string) error {
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return fmt.Errorf("asmload: creating %q: %w", folderPath, err)
	}

	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			prog, ok := spec.Programs[Coord{X: x, Y: y}]
			if !ok {
				return fmt.Errorf("asmload: missing program for PE(%d,%d)", x, y)
			}
			data, err := isa.EncodeProgramBytes(prog)
			if err != nil {
				return fmt.Errorf("asmload: encoding PE(%d,%d): %w", x, y, err)
			}
			name := fmt.Sprintf("PE-Y%dX%d", y, x)
			if err := os.WriteFile(filepath.Join(folderPath, name), data, 0o644); err != nil {
				return fmt.Errorf("asmload: writing %q: %w", name, err)
			}
		}
	}

	pairs := len(spec.LeftMemories)
	for i, dm := range spec.LeftMemories {
		if err := writeMemImage(folderPath, i, dm); err != nil {
			return err
		}
	}
	for i, dm := range spec.RightMemories {
		if err := writeMemImage(folderPath, i+pairs, dm); err != nil {
			return err
		}
	}

	for y, text := range spec.LeftAGUs {
		if err := writeText(folderPath, fmt.Sprintf("agu%d", y), text); err != nil {
			return err
		}
	}
	for y, text := range spec.RightAGUs {
		if err := writeText(folderPath, fmt.Sprintf("agu%d", y+spec.Height), text); err != nil {
			return err
		}
	}

	return nil
}

func writeMemImage(folderPath string, index int, dm *dmem.DataMemory) error {
	if dm == nil {
		return fmt.Errorf("asmload: missing data memory at index %d", index)
	}
	image, err := dm.ToBinaryString()
	if err != nil {
		return fmt.Errorf("asmload: rendering dm%d: %w", index, err)
	}
	return writeText(folderPath, fmt.Sprintf("dm%d", index), image)
}

func writeText(folderPath, name, content string) error {
	if err := os.WriteFile(filepath.Join(folderPath, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("asmload: writing %q: %w", name, err)
	}
	return nil
}
