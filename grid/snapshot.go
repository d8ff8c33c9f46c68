package grid

import (
	"fmt"
	"os"
	"path/filepath"
)

// DumpMem writes only the data memory images to folderPath, as dm{i} files,
// left edge first then right edge.
func (g *Grid) DumpMem(folderPath string) error {
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return fmt.Errorf("grid: creating %q: %w", folderPath, err)
	}
	pairs := g.Height / 2
	for i, dm := range g.DMems[left] {
		if err := writeDMImage(folderPath, fmt.Sprintf("dm%d", i), dm); err != nil {
			return err
		}
	}
	for i, dm := range g.DMems[right] {
		if err := writeDMImage(folderPath, fmt.Sprintf("dm%d", i+pairs), dm); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot writes a full debug dump to folderPath: dm{i} images and
// dm{i}_port{1,2} text dumps for both edges, and PE-Y{y}X{x}.state text
// dumps for every PE.
func (g *Grid) Snapshot(folderPath string) error {
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return fmt.Errorf("grid: creating %q: %w", folderPath, err)
	}

	pairs := g.Height / 2
	for i, dm := range g.DMems[left] {
		if err := writeDMImage(folderPath, fmt.Sprintf("dm%d", i), dm); err != nil {
			return err
		}
		if err := writeFile(folderPath, fmt.Sprintf("dm%d_port1", i), dm.Port1.String()); err != nil {
			return err
		}
		if err := writeFile(folderPath, fmt.Sprintf("dm%d_port2", i), dm.Port2.String()); err != nil {
			return err
		}
	}
	for i, dm := range g.DMems[right] {
		n := i + pairs
		if err := writeDMImage(folderPath, fmt.Sprintf("dm%d", n), dm); err != nil {
			return err
		}
		if err := writeFile(folderPath, fmt.Sprintf("dm%d_port1", n), dm.Port1.String()); err != nil {
			return err
		}
		if err := writeFile(folderPath, fmt.Sprintf("dm%d_port2", n), dm.Port2.String()); err != nil {
			return err
		}
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			name := fmt.Sprintf("PE-Y%dX%d.state", y, x)
			if err := writeFile(folderPath, name, g.PEs[y][x].Snapshot()); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDMImage(folderPath, name string, dm interface {
	ToBinaryString() (string, error)
}) error {
	s, err := dm.ToBinaryString()
	if err != nil {
		return fmt.Errorf("grid: rendering %q: %w", name, err)
	}
	return writeFile(folderPath, name, s)
}

func writeFile(folderPath, name, content string) error {
	if err := os.WriteFile(filepath.Join(folderPath, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("grid: writing %q: %w", name, err)
	}
	return nil
}
