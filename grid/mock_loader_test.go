package grid_test

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/sarchlab/pace-sim/grid"
	"github.com/sarchlab/pace-sim/isa"
)

// fakeDirEntry is a minimal os.DirEntry for naming files the mock reader
// reports without a real directory backing it.
type fakeDirEntry struct{ name string }

func (e fakeDirEntry) Name() string               { return e.name }
func (e fakeDirEntry) IsDir() bool                 { return false }
func (e fakeDirEntry) Type() fs.FileMode           { return 0 }
func (e fakeDirEntry) Info() (fs.FileInfo, error) { return nil, nil }

// zeroDMImage is one 8-byte line of zero bits, the smallest legal DM image.
const zeroDMImage = "0000000000000000000000000000000000000000000000000000000000000000\n"

// TestLoadFromFolderFSUsesInjectedReader exercises LoadFromFolderFS against a
// mocked filesystem seam, the CLI-level path that must not touch disk: every
// PE-Y{y}X{x}, dm{i}, and agu{i} lookup is satisfied entirely from gomock
// expectations.
func TestLoadFromFolderFSUsesInjectedReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsys := NewMockFolderReader(ctrl)

	nopOnce := isa.Program{Configurations: []isa.Configuration{
		{
			Operation:    isa.Operation{Opcode: isa.NOP},
			RouterConfig: isa.RouterConfig{SwitchConfig: isa.NewRouterSwitchConfig()},
		},
	}}
	progBytes, err := isa.EncodeProgramBytes(nopOnce)
	if err != nil {
		t.Fatalf("EncodeProgramBytes: %v", err)
	}

	const folder = "folder"
	peNames := []string{"PE-Y0X0", "PE-Y0X1", "PE-Y1X0", "PE-Y1X1"}
	entries := make([]os.DirEntry, len(peNames))
	for i, name := range peNames {
		entries[i] = fakeDirEntry{name: name}
	}
	fsys.EXPECT().ReadDir(folder).Return(entries, nil)

	for _, name := range peNames {
		fsys.EXPECT().ReadFile(filepath.Join(folder, name)).Return(progBytes, nil)
	}
	fsys.EXPECT().ReadFile(filepath.Join(folder, "dm0")).Return([]byte(zeroDMImage), nil)
	fsys.EXPECT().ReadFile(filepath.Join(folder, "dm1")).Return([]byte(zeroDMImage), nil)
	for i := 0; i < 4; i++ {
		fsys.EXPECT().Stat(filepath.Join(folder, fmt.Sprintf("agu%d", i))).Return(nil, os.ErrNotExist)
	}

	g, err := grid.LoadFromFolderFS(fsys, folder, nil)
	if err != nil {
		t.Fatalf("LoadFromFolderFS: %v", err)
	}
	if g.Width != 2 || g.Height != 2 {
		t.Fatalf("got shape %dx%d, want 2x2", g.Width, g.Height)
	}
	if g.IsAGUEnabled(0) || g.IsAGUEnabled(1) {
		t.Fatalf("expected no AGUs enabled, Stat reported every agu{i} missing")
	}
}
