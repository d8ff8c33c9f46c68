package grid

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/sarchlab/pace-sim/agu"
	"github.com/sarchlab/pace-sim/dmem"
	"github.com/sarchlab/pace-sim/isa"
	"github.com/sarchlab/pace-sim/pe"
)

// FolderReader abstracts the filesystem reads LoadFromFolder needs. Tests
// and embedding callers that must not touch disk can supply their own
// implementation via LoadFromFolderFS.
type FolderReader interface {
	ReadDir(path string) ([]os.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (os.FileInfo, error)
}

type osFolderReader struct{}

func (osFolderReader) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }
func (osFolderReader) ReadFile(path string) ([]byte, error)       { return os.ReadFile(path) }
func (osFolderReader) Stat(path string) (os.FileInfo, error)      { return os.Stat(path) }

var peFilenamePattern = regexp.MustCompile(`^PE-Y(\d+)X(\d+)$`)

// parsePEFilename parses a "PE-Y{y}X{x}" program filename, returning its
// (x, y) coordinate.
func parsePEFilename(name string) (x, y int, ok bool) {
	m := peFilenamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	y, errY := strconv.Atoi(m[1])
	x, errX := strconv.Atoi(m[2])
	if errY != nil || errX != nil {
		return 0, 0, false
	}
	return x, y, true
}

// LoadFromFolder builds a Grid from the on-disk layout: a PE-Y{y}X{x}
// binary program file for every array coordinate (shape inferred from the
// maximum x and y seen), dm{i} images for the left edge (i=0..height/2-1)
// then the right edge, and, if present, agu{i} mnemonic files for every row
// (i=0..height-1 for the left edge, i=height..2*height-1 for the right).
func LoadFromFolder(path string, logger *slog.Logger) (*Grid, error) {
	return LoadFromFolderFS(osFolderReader{}, path, logger)
}

// LoadFromFolderFS is LoadFromFolder with every filesystem read routed
// through fsys, so a caller embedding the simulator (or a unit test) can
// substitute an in-memory or mocked reader instead of touching disk.
func LoadFromFolderFS(fsys FolderReader, path string, logger *slog.Logger) (*Grid, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("grid: reading folder %q: %w", path, err)
	}

	maxX, maxY := -1, -1
	for _, entry := range entries {
		x, y, ok := parsePEFilename(entry.Name())
		if !ok {
			continue
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	if maxX < 0 || maxY < 0 {
		return nil, fmt.Errorf("grid: no PE-Y{y}X{x} program files found in %q", path)
	}
	width, height := maxX+1, maxY+1
	if width < 2 {
		return nil, fmt.Errorf("grid: array width %d is too small to have distinct left/right edges", width)
	}

	g := New(width, height, logger)

	if err := g.loadPrograms(fsys, path, width, height); err != nil {
		return nil, err
	}
	if err := g.loadDataMemories(fsys, path, height); err != nil {
		return nil, err
	}
	if err := g.loadAGUs(fsys, path, height); err != nil {
		return nil, err
	}

	if err := g.checkEqualProgramLengths(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Grid) loadPrograms(fsys FolderReader, path string, width, height int) error {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			name := fmt.Sprintf("PE-Y%dX%d", y, x)
			data, err := fsys.ReadFile(filepath.Join(path, name))
			if err != nil {
				return fmt.Errorf("grid: missing program file %q: %w", name, err)
			}
			program, err := isa.DecodeProgramBytes(data)
			if err != nil {
				return fmt.Errorf("grid: program file %q: %w", name, err)
			}
			if x == 0 || x == width-1 {
				g.PEs[y][x] = pe.NewMemPE(program)
			} else {
				g.PEs[y][x] = pe.New(program)
			}
		}
	}
	return nil
}

func (g *Grid) loadDataMemories(fsys FolderReader, path string, height int) error {
	pairs := height / 2
	for _, e := range []edge{left, right} {
		dms := make([]*dmem.DataMemory, pairs)
		for i := 0; i < pairs; i++ {
			index := i
			if e == right {
				index = i + pairs
			}
			name := fmt.Sprintf("dm%d", index)
			data, err := fsys.ReadFile(filepath.Join(path, name))
			if err != nil {
				return fmt.Errorf("grid: missing data memory file %q: %w", name, err)
			}
			dm, err := dmem.FromBinaryString(string(data))
			if err != nil {
				return fmt.Errorf("grid: data memory file %q: %w", name, err)
			}
			dms[i] = dm
		}
		g.DMems[e] = dms
	}
	return nil
}

func (g *Grid) loadAGUs(fsys FolderReader, path string, height int) error {
	present := 0
	for y := 0; y < 2*height; y++ {
		if fileExists(fsys, filepath.Join(path, fmt.Sprintf("agu%d", y))) {
			present++
		}
	}
	if present == 0 {
		g.Logger.Info("no AGU program files found, running without AGUs")
		return nil
	}
	if present != 2*height {
		return fmt.Errorf("grid: found %d of %d expected agu{i} files; AGU programs must be provided for every row on both edges", present, 2*height)
	}

	for _, e := range []edge{left, right} {
		agus := make([]*agu.AGU, height)
		for y := 0; y < height; y++ {
			index := y
			if e == right {
				index = y + height
			}
			name := fmt.Sprintf("agu%d", index)
			data, err := fsys.ReadFile(filepath.Join(path, name))
			if err != nil {
				return fmt.Errorf("grid: reading %q: %w", name, err)
			}
			prog, err := agu.ParseMnemonic(string(data))
			if err != nil {
				return fmt.Errorf("grid: agu program %q: %w", name, err)
			}
			a, err := agu.New(prog.CM, prog.ARF, prog.MaxCount)
			if err != nil {
				return fmt.Errorf("grid: agu program %q: %w", name, err)
			}
			agus[y] = a
		}
		g.AGUs[e] = agus
	}
	g.Logger.Info("AGU program files found, running with AGUs enabled")
	return nil
}

func (g *Grid) checkEqualProgramLengths() error {
	want := -1
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			n := g.PEs[y][x].Program.Len()
			if want < 0 {
				want = n
				continue
			}
			if n != want {
				return fmt.Errorf("grid: PE (%d,%d) has %d configurations, others have %d", x, y, n, want)
			}
		}
	}
	return nil
}

func fileExists(fsys FolderReader, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}
